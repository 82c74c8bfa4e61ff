package stats

import (
	"testing"
	"time"

	"premi/internal/core"
)

func TestProgress(t *testing.T) {
	goals := []core.Goal{
		{Target: core.Money{Cents: 100000}, Current: core.Money{Cents: 25000}},
		{Target: core.Money{Cents: 100000}, Current: core.Money{Cents: 75000}},
	}
	p := Progress(goals)
	if p.TotalSaved.Cents != 100000 || p.TotalTarget.Cents != 200000 {
		t.Fatalf("saved/target = %d/%d, want 100000/200000", p.TotalSaved.Cents, p.TotalTarget.Cents)
	}
	if p.Percent != 50 {
		t.Errorf("percent = %v, want 50", p.Percent)
	}

	// No goals: zero target must yield zero percent, not NaN.
	if got := Progress(nil).Percent; got != 0 {
		t.Errorf("empty progress = %v, want 0", got)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	cases := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{"half a day rounds up", now.Add(12 * time.Hour), 1},
		{"exact days", now.AddDate(0, 0, 3), 3},
		{"just past a boundary rounds up", now.Add(73 * time.Hour), 4},
		{"past due floors at zero", now.Add(-48 * time.Hour), 0},
		{"now is zero", now, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysUntil(tc.deadline, now); got != tc.want {
				t.Errorf("DaysUntil = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDailyHistogram(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2025, 3, d, hour, 0, 0, 0, time.Local)
	}
	times := []time.Time{
		day(1, 9), day(1, 23), // two events on the 1st
		day(3, 0),             // one on the 3rd
		day(5, 12), day(5, 13), day(5, 14),
	}

	buckets := DailyHistogram(times, 30)
	if len(buckets) != 3 {
		t.Fatalf("buckets = %d, want 3", len(buckets))
	}
	wantCounts := []int{2, 1, 3}
	for i, want := range wantCounts {
		if buckets[i].Count != want {
			t.Errorf("bucket %d count = %d, want %d", i, buckets[i].Count, want)
		}
	}
	for i := 1; i < len(buckets); i++ {
		if !buckets[i-1].Day.Before(buckets[i].Day) {
			t.Error("buckets not ascending by date")
		}
	}

	// Only the most recent buckets are retained.
	trimmed := DailyHistogram(times, 2)
	if len(trimmed) != 2 {
		t.Fatalf("trimmed buckets = %d, want 2", len(trimmed))
	}
	if trimmed[0].Day.Day() != 3 || trimmed[1].Day.Day() != 5 {
		t.Errorf("trimmed kept wrong days: %v", trimmed)
	}
}

func TestRankByKey(t *testing.T) {
	keys := []string{"b", "a", "b", "c", "a", "b"}
	ranks := RankByKey(keys)
	if len(ranks) != 3 {
		t.Fatalf("ranks = %d, want 3", len(ranks))
	}
	if ranks[0].Key != "b" || ranks[0].Count != 3 {
		t.Errorf("top rank = %+v, want b x3", ranks[0])
	}
	if ranks[0].Percent != 50 {
		t.Errorf("top percent = %v, want 50", ranks[0].Percent)
	}
	// a and c both... a has 2, c has 1: strictly ordered.
	if ranks[1].Key != "a" || ranks[2].Key != "c" {
		t.Errorf("order = %s,%s, want a,c", ranks[1].Key, ranks[2].Key)
	}
}

func TestRankByKeyTieBreak(t *testing.T) {
	// Equal counts must order ascending by key, deterministically.
	ranks := RankByKey([]string{"z", "m", "a"})
	got := []string{ranks[0].Key, ranks[1].Key, ranks[2].Key}
	want := []string{"a", "m", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order = %v, want %v", got, want)
		}
	}
}

func TestPrizeWins(t *testing.T) {
	spins := []core.SpinRecord{
		{PrizeID: "points-100"},
		{PrizeID: "retry"},
		{PrizeID: "points-100"},
	}
	ranks := PrizeWins(spins)
	if ranks[0].Key != "points-100" || ranks[0].Count != 2 {
		t.Errorf("top prize = %+v, want points-100 x2", ranks[0])
	}
}

func TestBudgetUsage(t *testing.T) {
	b := BudgetRow{Category: "food", Limit: core.Money{Cents: 50000}, Spent: core.Money{Cents: 12500}}
	if got := BudgetUsage(b); got != 25 {
		t.Errorf("usage = %v, want 25", got)
	}
	if got := BudgetUsage(BudgetRow{}); got != 0 {
		t.Errorf("zero-limit usage = %v, want 0", got)
	}
}
