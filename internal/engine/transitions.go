package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"premi/internal/core"
)

// SpinResult is the outcome of one lottery spin.
type SpinResult struct {
	Prize     core.Prize
	Angle     float64 // wheel rotation target in degrees, derived from the table
	FreeSpin  bool    // true if allowance was consumed instead of points
	PointsWon int64   // credit applied for points-category prizes, else 0
	Balance   int64   // balance after cost and any prize credit
}

// ContributeResult is the outcome of one goal contribution.
type ContributeResult struct {
	Goal           core.Goal
	Applied        core.Money // amount actually added; overflow past target is discarded
	Completed      bool       // true if this contribution completed the goal
	RewardCredited int64      // points credited on completion, else 0
}

// spin applies the full spin transition: lazy allowance refresh, cost
// (exactly one of free-spin decrement or points debit), weighted draw with
// u uniform in [0,100), and the prize credit for points prizes. Returns the
// input state unchanged on failure.
func spin(s State, prizes []core.Prize, cfg Config, u float64, now time.Time) (State, SpinResult, error) {
	ns := s.Clone()
	ns.Allowance = ns.Allowance.Refreshed(now, cfg.MaxFreeSpinsPerDay)

	free := ns.Allowance.FreeSpinsRemaining > 0
	if !free && ns.Balance < cfg.SpinCost {
		return s, SpinResult{}, fmt.Errorf("spin: %w", core.ErrNoSpinsAvailable)
	}

	if free {
		ns.Allowance.FreeSpinsRemaining--
	} else {
		ns.Balance -= cfg.SpinCost
	}

	prize := core.DrawPrize(prizes, u)
	angle, err := core.WheelAngle(prizes, prize.ID)
	if err != nil {
		// Draw returned a prize not in the table; impossible after
		// ValidatePrizes, so surface it as data corruption.
		return s, SpinResult{}, fmt.Errorf("spin: %w", core.ErrInvariant)
	}

	var won int64
	if prize.Category == core.CategoryPoints {
		won, err = prize.PointsValue()
		if err != nil {
			return s, SpinResult{}, fmt.Errorf("spin: prize %s: %w", prize.ID, err)
		}
		ns.Balance += won
	}

	ns.Spins = append(ns.Spins, core.SpinRecord{
		ID:       uuid.New(),
		PrizeID:  prize.ID,
		Category: prize.Category,
		FreeSpin: free,
		At:       now,
	})

	return ns, SpinResult{
		Prize:     prize,
		Angle:     angle,
		FreeSpin:  free,
		PointsWon: won,
		Balance:   ns.Balance,
	}, nil
}

// redeem exchanges points for a catalog item. All preconditions are
// checked before any mutation; each failure is independently
// distinguishable for the caller.
func redeem(s State, items []core.ShopItem, itemID string, now time.Time) (State, core.RedemptionRecord, error) {
	var item core.ShopItem
	found := false
	for _, it := range items {
		if it.ID == itemID {
			item = it
			found = true
			break
		}
	}
	if !found {
		return s, core.RedemptionRecord{}, fmt.Errorf("redeem %s: %w", itemID, core.ErrItemNotFound)
	}
	if !item.Active {
		return s, core.RedemptionRecord{}, fmt.Errorf("redeem %s: %w", itemID, core.ErrItemInactive)
	}

	ns := s.Clone()
	remaining, ok := ns.Stock[itemID]
	if !ok {
		// Stock rows are seeded from the catalog; fall back to the
		// catalog value for items added mid-session.
		remaining = item.Stock
	}
	if remaining != core.UnlimitedStock && remaining <= 0 {
		return s, core.RedemptionRecord{}, fmt.Errorf("redeem %s: %w", itemID, core.ErrItemSoldOut)
	}

	price := item.EffectivePrice()
	if ns.Balance < price {
		return s, core.RedemptionRecord{}, fmt.Errorf("redeem %s: %w", itemID, core.ErrInsufficientPoints)
	}

	ns.Balance -= price
	if remaining != core.UnlimitedStock {
		ns.Stock[itemID] = remaining - 1
	}
	rec := core.RedemptionRecord{
		ID:        uuid.New(),
		ItemID:    itemID,
		PricePaid: price,
		At:        now,
	}
	ns.Redemptions = append(ns.Redemptions, rec)
	return ns, rec, nil
}

// contribute adds amount to an active goal, capping at the target
// (overflow is discarded, not carried forward). Reaching the target flips
// the goal to Completed and credits its frozen points reward in the same
// transition, exactly once: a later contribute on the completed goal is
// rejected, not silently re-credited.
func contribute(s State, goalID uuid.UUID, amount core.Money, now time.Time) (State, ContributeResult, error) {
	if err := amount.Validate(); err != nil {
		return s, ContributeResult{}, fmt.Errorf("contribute: %w", err)
	}
	idx := s.goalIndex(goalID)
	if idx < 0 {
		return s, ContributeResult{}, fmt.Errorf("contribute %s: %w", goalID, core.ErrGoalNotFound)
	}
	if s.Goals[idx].State != core.GoalActive {
		return s, ContributeResult{}, fmt.Errorf("contribute %s: %w", goalID, core.ErrGoalCompleted)
	}

	ns := s.Clone()
	g := ns.Goals[idx]

	applied := amount
	if g.Remaining().LessThan(amount) {
		applied = g.Remaining()
	}
	g.Current = g.Current.Add(applied)

	res := ContributeResult{Applied: applied}
	if g.Current == g.Target {
		g.State = core.GoalCompleted
		g.CompletedAt = now
		ns.Balance += g.PointsReward
		res.Completed = true
		res.RewardCredited = g.PointsReward
	}

	ns.Goals[idx] = g
	res.Goal = g
	return ns, res, nil
}
