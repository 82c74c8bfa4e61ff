package http

import (
	"context"
	"net/http"
	"time"

	"premi/internal/core"
	"premi/internal/stats"
)

const overviewCacheKey = "overview"

type rankEntry struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type dayBucketEntry struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type budgetEntry struct {
	Category    string  `json:"category"`
	LimitCents  int64   `json:"limit_cents"`
	SpentCents  int64   `json:"spent_cents"`
	UsedPercent float64 `json:"used_percent"`
}

type overviewResponse struct {
	Balance            int64            `json:"balance"`
	FreeSpinsRemaining int              `json:"free_spins_remaining"`
	TotalSavedCents    int64            `json:"total_saved_cents"`
	TotalTargetCents   int64            `json:"total_target_cents"`
	SavingsPercent     float64          `json:"savings_percent"`
	ActiveGoals        int              `json:"active_goals"`
	CompletedGoals     int              `json:"completed_goals"`
	TotalSpins         int              `json:"total_spins"`
	TotalRedemptions   int              `json:"total_redemptions"`
	PrizeWins          []rankEntry      `json:"prize_wins"`
	SpinsPerDay        []dayBucketEntry `json:"spins_per_day"`
	SpendingByCategory []rankEntry      `json:"spending_by_category,omitempty"`
	Budgets            []budgetEntry    `json:"budgets,omitempty"`
}

type feedResponse struct {
	FetchedAt    time.Time `json:"fetched_at"`
	Transactions int       `json:"transactions"`
	Budgets      int       `json:"budgets"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.overviewCache.Get(overviewCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	resp := s.buildOverview()
	s.overviewCache.Set(overviewCacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) buildOverview() overviewResponse {
	state := s.rewards.Snapshot()
	allowance := s.rewards.Allowance()
	progress := stats.Progress(state.Goals)

	resp := overviewResponse{
		Balance:            state.Balance,
		FreeSpinsRemaining: allowance.FreeSpinsRemaining,
		TotalSavedCents:    progress.TotalSaved.Cents,
		TotalTargetCents:   progress.TotalTarget.Cents,
		SavingsPercent:     progress.Percent,
		TotalSpins:         len(state.Spins),
		TotalRedemptions:   len(state.Redemptions),
		PrizeWins:          toRankEntries(stats.PrizeWins(state.Spins)),
	}

	for _, g := range state.Goals {
		if g.State == core.GoalCompleted {
			resp.CompletedGoals++
		} else {
			resp.ActiveGoals++
		}
	}

	spinTimes := make([]time.Time, len(state.Spins))
	for i, sp := range state.Spins {
		spinTimes[i] = sp.At
	}
	for _, b := range stats.DailyHistogram(spinTimes, 30) {
		resp.SpinsPerDay = append(resp.SpinsPerDay, dayBucketEntry{
			Day:   b.Day.Format("2006-01-02"),
			Count: b.Count,
		})
	}

	// External rows come from the last completed feed fetch, if any; the
	// overview never waits on the data service.
	if s.fetcher != nil {
		if dash, _, ok := s.fetcher.Latest(); ok {
			resp.SpendingByCategory = toRankEntries(stats.SpendingByCategory(dash.Transactions))
			for _, b := range dash.Budgets {
				resp.Budgets = append(resp.Budgets, budgetEntry{
					Category:    b.Category,
					LimitCents:  b.Limit.Cents,
					SpentCents:  b.Spent.Cents,
					UsedPercent: stats.BudgetUsage(b),
				})
			}
		}
	}

	return resp
}

// handleFeed reports what the last completed fetch delivered.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, http.StatusNotFound, "feed not configured")
		return
	}
	dash, fetchedAt, ok := s.fetcher.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no feed data yet")
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{
		FetchedAt:    fetchedAt,
		Transactions: len(dash.Transactions),
		Budgets:      len(dash.Budgets),
	})
}

// handleFeedRefresh kicks off an async fetch; the response never waits for
// it to land.
func (s *Server) handleFeedRefresh(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, http.StatusNotFound, "feed not configured")
		return
	}
	// The fetch outlives the request; detach it from the request context.
	s.fetcher.Refresh(context.WithoutCancel(r.Context()))
	s.overviewCache.Delete(overviewCacheKey)
	w.WriteHeader(http.StatusAccepted)
}

func toRankEntries(ranks []stats.CategoryRank) []rankEntry {
	out := make([]rankEntry, len(ranks))
	for i, r := range ranks {
		out[i] = rankEntry{Key: r.Key, Count: r.Count, Percent: r.Percent}
	}
	return out
}
