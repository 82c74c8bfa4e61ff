package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoalState is the lifecycle state of a savings goal. The transition
// Active -> Completed is one-way and fires exactly once.
type GoalState string

const (
	GoalActive    GoalState = "active"
	GoalCompleted GoalState = "completed"
)

// GoalPriority orders goals on the dashboard.
type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

// Valid reports whether the priority is one of the known values.
func (p GoalPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Goal is a savings goal that pays a one-time points reward on completion.
type Goal struct {
	ID           uuid.UUID
	Title        string
	Target       Money
	Current      Money
	Deadline     time.Time
	Priority     GoalPriority
	PointsReward int64 // frozen at creation, never recomputed
	State        GoalState
	CreatedAt    time.Time
	CompletedAt  time.Time // zero until completed
}

// PointsRewardFor computes the completion reward for a target amount:
// one point per 100 currency units, rounded down. Recorded once at goal
// creation; later edits to the target do not recompute it.
func PointsRewardFor(target Money) int64 {
	return target.Cents / 10000
}

// NewGoal creates an active goal with zero progress and a frozen reward.
func NewGoal(title string, target Money, deadline time.Time, priority GoalPriority, now time.Time) (Goal, error) {
	if strings.TrimSpace(title) == "" {
		return Goal{}, ErrEmptyTitle
	}
	if err := target.Validate(); err != nil {
		return Goal{}, err
	}
	if !priority.Valid() {
		return Goal{}, ErrInvalidPriority
	}
	return Goal{
		ID:           uuid.New(),
		Title:        title,
		Target:       target,
		Current:      Money{},
		Deadline:     deadline,
		Priority:     priority,
		PointsReward: PointsRewardFor(target),
		State:        GoalActive,
		CreatedAt:    now,
	}, nil
}

// Remaining is the amount still needed to reach the target. Never negative
// while the progress invariant (Current <= Target) holds.
func (g Goal) Remaining() Money {
	return g.Target.Sub(g.Current)
}
