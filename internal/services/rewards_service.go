// Package services orchestrates ledger operations across the engine,
// SQLite persistence and AMQP fan-out.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"premi/internal/amqp"
	"premi/internal/core"
	"premi/internal/engine"
)

// StateStore persists full ledger snapshots.
type StateStore interface {
	SaveState(ctx context.Context, state engine.State) error
}

// ActivityPublisher fans activity events out to the mirror worker.
type ActivityPublisher interface {
	PublishSpinRecorded(ctx context.Context, msg *amqp.SpinRecordedMessage) error
	PublishRedemptionRecorded(ctx context.Context, msg *amqp.RedemptionRecordedMessage) error
	PublishGoalCompleted(ctx context.Context, msg *amqp.GoalCompletedMessage) error
}

// RewardsService applies a ledger operation, saves the resulting state and
// publishes the matching activity event. Saving is required; publishing is
// best effort and never fails the request.
type RewardsService struct {
	engine    *engine.Engine
	storage   StateStore
	publisher ActivityPublisher
}

func NewRewardsService(eng *engine.Engine, storage StateStore, publisher ActivityPublisher) *RewardsService {
	return &RewardsService{
		engine:    eng,
		storage:   storage,
		publisher: publisher,
	}
}

// Spin draws one prize and persists the updated ledger.
func (s *RewardsService) Spin(ctx context.Context) (engine.SpinResult, error) {
	res, state, err := s.engine.Spin()
	if err != nil {
		return engine.SpinResult{}, err
	}
	if err := s.save(ctx, state); err != nil {
		return engine.SpinResult{}, err
	}

	spun := state.Spins[len(state.Spins)-1]
	s.publish(ctx, "spin", func(ctx context.Context) error {
		return s.publisher.PublishSpinRecorded(ctx, &amqp.SpinRecordedMessage{
			SpinID:    spun.ID.String(),
			PrizeID:   res.Prize.ID,
			Category:  string(res.Prize.Category),
			FreeSpin:  res.FreeSpin,
			PointsWon: res.PointsWon,
			Balance:   res.Balance,
			At:        spun.At,
		})
	})

	return res, nil
}

// Redeem exchanges points for a shop item and persists the updated ledger.
func (s *RewardsService) Redeem(ctx context.Context, itemID string) (core.RedemptionRecord, error) {
	rec, state, err := s.engine.Redeem(itemID)
	if err != nil {
		return core.RedemptionRecord{}, err
	}
	if err := s.save(ctx, state); err != nil {
		return core.RedemptionRecord{}, err
	}

	s.publish(ctx, "redemption", func(ctx context.Context) error {
		return s.publisher.PublishRedemptionRecorded(ctx, &amqp.RedemptionRecordedMessage{
			RedemptionID: rec.ID.String(),
			ItemID:       rec.ItemID,
			PricePaid:    rec.PricePaid,
			Balance:      state.Balance,
			At:           rec.At,
		})
	})

	return rec, nil
}

// Contribute adds an amount to a goal; a completing contribution also
// publishes the goal event.
func (s *RewardsService) Contribute(ctx context.Context, goalID uuid.UUID, amount core.Money) (engine.ContributeResult, error) {
	res, state, err := s.engine.Contribute(goalID, amount)
	if err != nil {
		return engine.ContributeResult{}, err
	}
	if err := s.save(ctx, state); err != nil {
		return engine.ContributeResult{}, err
	}

	if res.Completed {
		s.publish(ctx, "goal completion", func(ctx context.Context) error {
			return s.publisher.PublishGoalCompleted(ctx, &amqp.GoalCompletedMessage{
				GoalID:       res.Goal.ID.String(),
				Title:        res.Goal.Title,
				TargetCents:  res.Goal.Target.Cents,
				PointsReward: res.RewardCredited,
				Balance:      state.Balance,
				At:           res.Goal.CompletedAt,
			})
		})
	}

	return res, nil
}

// CreateGoal adds a new savings goal and persists the updated ledger.
func (s *RewardsService) CreateGoal(ctx context.Context, title string, target core.Money, deadline time.Time, priority core.GoalPriority) (core.Goal, error) {
	g, state, err := s.engine.CreateGoal(title, target, deadline, priority)
	if err != nil {
		return core.Goal{}, err
	}
	if err := s.save(ctx, state); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// EditGoal updates goal fields and persists the updated ledger.
func (s *RewardsService) EditGoal(ctx context.Context, goalID uuid.UUID, upd engine.GoalUpdate) (core.Goal, error) {
	g, state, err := s.engine.EditGoal(goalID, upd)
	if err != nil {
		return core.Goal{}, err
	}
	if err := s.save(ctx, state); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// DeleteGoal removes a goal and persists the updated ledger.
func (s *RewardsService) DeleteGoal(ctx context.Context, goalID uuid.UUID) error {
	state, err := s.engine.DeleteGoal(goalID)
	if err != nil {
		return err
	}
	return s.save(ctx, state)
}

// Allowance returns the free-spin counter after the lazy daily reset.
func (s *RewardsService) Allowance() core.SpinAllowance {
	return s.engine.Allowance()
}

// Snapshot returns a copy of the full ledger state.
func (s *RewardsService) Snapshot() engine.State {
	return s.engine.Snapshot()
}

// Prizes returns the prize table in its fixed wheel order.
func (s *RewardsService) Prizes() []core.Prize {
	return s.engine.Prizes()
}

// Items returns the shop catalog.
func (s *RewardsService) Items() []core.ShopItem {
	return s.engine.Items()
}

// save persists the snapshot. The in-memory engine stays authoritative on
// failure; the next successful save rewrites the full state, so nothing is
// lost once the database recovers.
func (s *RewardsService) save(ctx context.Context, state engine.State) error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.SaveState(ctx, state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (s *RewardsService) publish(ctx context.Context, kind string, fn func(context.Context) error) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping activity message", "kind", kind)
		return
	}
	if err := fn(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity message",
			"kind", kind, "error", err)
		// Don't fail the request; the ledger is already saved.
	}
}
