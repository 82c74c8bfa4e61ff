// Package sheets defines the outbound port for mirroring rewards activity
// to a spreadsheet, plus the row shape adapters append.
package sheets

import (
	"context"
	"time"
)

// Activity row kinds.
const (
	KindSpin       = "spin"
	KindRedemption = "redemption"
	KindGoal       = "goal"
)

// ActivityRow is one mirrored ledger event. Points carries the balance
// delta: positive for credits, negative for debits.
type ActivityRow struct {
	Kind    string
	RefID   string
	Label   string
	Points  int64
	Balance int64
	At      time.Time
}

// ActivityWriter is the port for outbound mirror adapters.
type ActivityWriter interface {
	Append(ctx context.Context, row ActivityRow) (rowRef string, err error)
}
