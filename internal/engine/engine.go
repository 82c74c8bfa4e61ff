package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"premi/internal/core"
)

// Config holds the tunables of the economy.
type Config struct {
	SpinCost           int64 // points debited when no free spin remains
	MaxFreeSpinsPerDay int
}

// Engine owns the ledger state and serializes every mutation behind one
// mutex: two back-to-back calls can never interleave and corrupt the
// balance, the stock or a goal. Reads of external dashboard data never go
// through here (see internal/feed), so no mutation can block on I/O.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	prizes  []core.Prize
	items   []core.ShopItem
	state   State
	uniform func() float64 // uniform in [0,1)
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithUniform overrides the random source with a function returning
// uniform values in [0,1), for tests and seeded runs.
func WithUniform(f func() float64) Option {
	return func(e *Engine) { e.uniform = f }
}

// New validates both catalogs and builds an engine around the given state.
// A prize table whose weights do not sum to exactly 100 is rejected here,
// loudly, instead of letting the residual probability mass fall through to
// the last entry at draw time.
func New(cfg Config, prizes []core.Prize, items []core.ShopItem, state State, opts ...Option) (*Engine, error) {
	if cfg.SpinCost < 0 || cfg.MaxFreeSpinsPerDay < 0 {
		return nil, fmt.Errorf("engine config: %w", core.ErrInvariant)
	}
	if err := core.ValidatePrizes(prizes); err != nil {
		return nil, fmt.Errorf("prize table: %w", err)
	}
	if err := core.ValidateShopItems(items); err != nil {
		return nil, fmt.Errorf("shop catalog: %w", err)
	}
	if state.Stock == nil {
		state = NewState(items)
	}
	e := &Engine{
		cfg:     cfg,
		prizes:  prizes,
		items:   items,
		state:   state,
		uniform: rand.Float64,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Spin draws one prize. Cost first: a free spin if the (lazily refreshed)
// allowance has one, otherwise a SpinCost debit; exactly one of the two.
// Fails with no mutation when neither resource is available.
func (e *Engine) Spin() (SpinResult, State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ns, res, err := spin(e.state, e.prizes, e.cfg, e.uniform()*100, e.now())
	if err != nil {
		return SpinResult{}, State{}, err
	}
	e.state = ns
	return res, ns.Clone(), nil
}

// Redeem exchanges points for a shop item, decrementing finite stock and
// appending a redemption record, atomically.
func (e *Engine) Redeem(itemID string) (core.RedemptionRecord, State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ns, rec, err := redeem(e.state, e.items, itemID, e.now())
	if err != nil {
		return core.RedemptionRecord{}, State{}, err
	}
	e.state = ns
	return rec, ns.Clone(), nil
}

// Contribute adds an amount to an active goal, completing it and crediting
// its frozen reward if the target is reached.
func (e *Engine) Contribute(goalID uuid.UUID, amount core.Money) (ContributeResult, State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ns, res, err := contribute(e.state, goalID, amount, e.now())
	if err != nil {
		return ContributeResult{}, State{}, err
	}
	e.state = ns
	return res, ns.Clone(), nil
}

// CreateGoal adds a new active goal with a reward frozen at
// floor(target/100) points.
func (e *Engine) CreateGoal(title string, target core.Money, deadline time.Time, priority core.GoalPriority) (core.Goal, State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := core.NewGoal(title, target, deadline, priority, e.now())
	if err != nil {
		return core.Goal{}, State{}, fmt.Errorf("create goal: %w", err)
	}
	ns := e.state.Clone()
	ns.Goals = append(ns.Goals, g)
	e.state = ns
	return g, ns.Clone(), nil
}

// GoalUpdate carries the optional fields of an edit; nil means unchanged.
type GoalUpdate struct {
	Title    *string
	Target   *core.Money
	Deadline *time.Time
	Priority *core.GoalPriority
}

// EditGoal updates goal fields. Editing the target does not recompute the
// frozen points reward, and cannot move the target below the current
// progress (that would break the 0 <= current <= target invariant).
func (e *Engine) EditGoal(goalID uuid.UUID, upd GoalUpdate) (core.Goal, State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.goalIndex(goalID)
	if idx < 0 {
		return core.Goal{}, State{}, fmt.Errorf("edit goal %s: %w", goalID, core.ErrGoalNotFound)
	}

	ns := e.state.Clone()
	g := ns.Goals[idx]
	if upd.Title != nil {
		if *upd.Title == "" {
			return core.Goal{}, State{}, fmt.Errorf("edit goal %s: %w", goalID, core.ErrEmptyTitle)
		}
		g.Title = *upd.Title
	}
	if upd.Target != nil {
		if err := upd.Target.Validate(); err != nil {
			return core.Goal{}, State{}, fmt.Errorf("edit goal %s: %w", goalID, err)
		}
		if upd.Target.LessThan(g.Current) {
			return core.Goal{}, State{}, fmt.Errorf("edit goal %s: target below current progress: %w", goalID, core.ErrInvalidAmount)
		}
		g.Target = *upd.Target
	}
	if upd.Deadline != nil {
		g.Deadline = *upd.Deadline
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return core.Goal{}, State{}, fmt.Errorf("edit goal %s: %w", goalID, core.ErrInvalidPriority)
		}
		g.Priority = *upd.Priority
	}

	ns.Goals[idx] = g
	e.state = ns
	return g, ns.Clone(), nil
}

// DeleteGoal removes a goal.
func (e *Engine) DeleteGoal(goalID uuid.UUID) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.goalIndex(goalID)
	if idx < 0 {
		return State{}, fmt.Errorf("delete goal %s: %w", goalID, core.ErrGoalNotFound)
	}
	ns := e.state.Clone()
	ns.Goals = append(ns.Goals[:idx], ns.Goals[idx+1:]...)
	e.state = ns
	return ns.Clone(), nil
}

// Allowance returns the free-spin counter after applying the lazy daily
// reset. The refreshed value is stored so a reset is persisted on the next
// save even if no spin follows.
func (e *Engine) Allowance() core.SpinAllowance {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Allowance = e.state.Allowance.Refreshed(e.now(), e.cfg.MaxFreeSpinsPerDay)
	return e.state.Allowance
}

// Snapshot returns a deep copy of the current state for reads and saves.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Prizes returns the read-only prize table in its fixed order.
func (e *Engine) Prizes() []core.Prize {
	return append([]core.Prize(nil), e.prizes...)
}

// Items returns the read-only shop catalog.
func (e *Engine) Items() []core.ShopItem {
	return append([]core.ShopItem(nil), e.items...)
}
