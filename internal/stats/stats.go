// Package stats computes dashboard summaries from ledger snapshots and
// externally supplied transaction/budget rows. Everything here is a pure
// function of its inputs: no caching, no clock, no I/O.
package stats

import (
	"math"
	"sort"
	"time"

	"premi/internal/core"
)

// GoalProgress summarizes savings progress across all goals.
type GoalProgress struct {
	TotalSaved  core.Money
	TotalTarget core.Money
	Percent     float64 // 0 when there is no target
}

// Progress sums saved and target amounts across goals and derives the
// overall percentage.
func Progress(goals []core.Goal) GoalProgress {
	var p GoalProgress
	for _, g := range goals {
		p.TotalSaved = p.TotalSaved.Add(g.Current)
		p.TotalTarget = p.TotalTarget.Add(g.Target)
	}
	if p.TotalTarget.Cents > 0 {
		p.Percent = float64(p.TotalSaved.Cents) / float64(p.TotalTarget.Cents) * 100
	}
	return p
}

// DaysUntil returns the number of days until a deadline, rounded up, and
// floored at zero once the deadline has passed.
func DaysUntil(deadline, now time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// DayBucket is one calendar day of activity.
type DayBucket struct {
	Day   time.Time // local midnight of the day
	Count int
}

// DailyHistogram groups timestamps by local calendar day and returns the
// most recent maxBuckets days that saw activity, sorted ascending by date.
func DailyHistogram(times []time.Time, maxBuckets int) []DayBucket {
	counts := make(map[time.Time]int)
	for _, t := range times {
		y, m, d := t.Local().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
		counts[day]++
	}

	buckets := make([]DayBucket, 0, len(counts))
	for day, n := range counts {
		buckets = append(buckets, DayBucket{Day: day, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })

	if maxBuckets > 0 && len(buckets) > maxBuckets {
		buckets = buckets[len(buckets)-maxBuckets:]
	}
	return buckets
}

// CategoryRank is one row of a categorical ranking.
type CategoryRank struct {
	Key     string
	Count   int
	Percent float64
}

// RankByKey counts occurrences per key and ranks them by count descending.
// Ties break ascending by key so the output is fully deterministic.
func RankByKey(keys []string) []CategoryRank {
	counts := make(map[string]int)
	for _, k := range keys {
		counts[k]++
	}
	total := len(keys)

	ranks := make([]CategoryRank, 0, len(counts))
	for k, n := range counts {
		r := CategoryRank{Key: k, Count: n}
		if total > 0 {
			r.Percent = float64(n) / float64(total) * 100
		}
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Count != ranks[j].Count {
			return ranks[i].Count > ranks[j].Count
		}
		return ranks[i].Key < ranks[j].Key
	})
	return ranks
}

// PrizeWins ranks spin outcomes by prize id.
func PrizeWins(spins []core.SpinRecord) []CategoryRank {
	keys := make([]string, len(spins))
	for i, s := range spins {
		keys[i] = s.PrizeID
	}
	return RankByKey(keys)
}

// SpendingByCategory ranks externally supplied transaction rows by
// category, weighted by row count (not amount), matching the prize-win
// ranking shape so the dashboard renders both the same way.
func SpendingByCategory(rows []TransactionRow) []CategoryRank {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Category
	}
	return RankByKey(keys)
}

// TransactionRow is an already-materialized row from the external data
// service. This package only transforms rows it is given.
type TransactionRow struct {
	Category string
	Amount   core.Money
	At       time.Time
}

// BudgetRow is an externally materialized budget with its spent amount.
type BudgetRow struct {
	Category string
	Limit    core.Money
	Spent    core.Money
}

// BudgetUsage returns the spent share of a budget as a percentage,
// 0 for budgets without a limit.
func BudgetUsage(b BudgetRow) float64 {
	if b.Limit.Cents <= 0 {
		return 0
	}
	return float64(b.Spent.Cents) / float64(b.Limit.Cents) * 100
}
