package core

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionRecord is an append-only log entry written for every
// successful shop redemption. Used for history views and aggregation only.
type RedemptionRecord struct {
	ID        uuid.UUID
	ItemID    string
	PricePaid int64 // effective price at redemption time, in points
	At        time.Time
}

// SpinRecord is an append-only log entry written for every spin, feeding
// the daily-activity histograms and prize-win rankings.
type SpinRecord struct {
	ID       uuid.UUID
	PrizeID  string
	Category PrizeCategory
	FreeSpin bool
	At       time.Time
}
