// Package engine implements the rewards economy: the points ledger, the
// weighted prize lottery, shop redemption and the goal contribution state
// machine.
//
// All business logic lives in pure transition functions of the form
// (State, inputs) -> (State, Result, error); Engine wraps them with a
// mutex, a clock and a random source so every public mutation is one
// indivisible state transition with no partial effect on failure.
package engine

import (
	"github.com/google/uuid"

	"premi/internal/core"
)

// State is the complete mutable state of one user's rewards economy.
// Catalogs (prize table, shop items) are not part of it: they are loaded
// once per session and read-only.
type State struct {
	Balance     int64 // points, never negative
	Allowance   core.SpinAllowance
	Goals       []core.Goal
	Stock       map[string]int // itemID -> remaining; core.UnlimitedStock never decrements
	Redemptions []core.RedemptionRecord
	Spins       []core.SpinRecord
}

// NewState builds the initial state for a fresh ledger, seeding per-item
// stock from the shop catalog.
func NewState(items []core.ShopItem) State {
	stock := make(map[string]int, len(items))
	for _, it := range items {
		stock[it.ID] = it.Stock
	}
	return State{Stock: stock}
}

// Clone returns a deep copy. Transitions operate on clones so a failed
// precondition can never leave a half-applied mutation behind.
func (s State) Clone() State {
	out := s
	out.Goals = append([]core.Goal(nil), s.Goals...)
	out.Redemptions = append([]core.RedemptionRecord(nil), s.Redemptions...)
	out.Spins = append([]core.SpinRecord(nil), s.Spins...)
	out.Stock = make(map[string]int, len(s.Stock))
	for k, v := range s.Stock {
		out.Stock[k] = v
	}
	return out
}

// goalIndex returns the position of a goal in the state, or -1.
func (s State) goalIndex(id uuid.UUID) int {
	for i, g := range s.Goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
