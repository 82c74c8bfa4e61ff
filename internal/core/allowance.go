package core

import "time"

// SpinAllowance is the daily-resetting free-spin counter. It is
// independent of the points balance: a free spin consumes allowance
// instead of points.
type SpinAllowance struct {
	FreeSpinsRemaining int
	NextResetAt        time.Time
}

// Refreshed applies the lazy daily reset: if now has reached NextResetAt
// the counter is restored to max and the reset moves to the next local
// midnight. Any number of same-day calls are no-ops, and the reset is
// correct even if the process was down across several midnights (one
// reset, not one per missed day).
func (a SpinAllowance) Refreshed(now time.Time, max int) SpinAllowance {
	if a.NextResetAt.IsZero() || !now.Before(a.NextResetAt) {
		return SpinAllowance{
			FreeSpinsRemaining: max,
			NextResetAt:        NextMidnight(now),
		}
	}
	return a
}

// NextMidnight returns the first local midnight strictly after t.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
