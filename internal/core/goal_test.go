package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewGoal(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	deadline := now.AddDate(0, 6, 0)

	g, err := NewGoal("Vacation", Money{Cents: 250000}, deadline, PriorityHigh, now)
	if err != nil {
		t.Fatal(err)
	}
	if g.State != GoalActive {
		t.Errorf("state = %s, want active", g.State)
	}
	if g.Current.Cents != 0 {
		t.Errorf("current = %d, want 0", g.Current.Cents)
	}
	if g.PointsReward != 25 {
		t.Errorf("reward = %d, want 25 (floor(2500/100))", g.PointsReward)
	}
	if g.ID == uuid.Nil {
		t.Error("goal id not assigned")
	}

	tests := []struct {
		name     string
		title    string
		target   Money
		priority GoalPriority
		wantErr  error
	}{
		{"empty title", "  ", Money{Cents: 100}, PriorityLow, ErrEmptyTitle},
		{"zero target", "x", Money{}, PriorityLow, ErrInvalidAmount},
		{"bad priority", "x", Money{Cents: 100}, "urgent", ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGoal(tt.title, tt.target, deadline, tt.priority, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPointsRewardFor(t *testing.T) {
	cases := []struct {
		cents int64
		want  int64
	}{
		{250000, 25}, // 2500.00 -> 25
		{9999, 0},    // 99.99 -> 0
		{10000, 1},   // 100.00 -> 1
		{19999, 1},   // floor
	}
	for _, tc := range cases {
		if got := PointsRewardFor(Money{Cents: tc.cents}); got != tc.want {
			t.Errorf("PointsRewardFor(%d) = %d, want %d", tc.cents, got, tc.want)
		}
	}
}

func TestGoalRemaining(t *testing.T) {
	g := Goal{Target: Money{Cents: 250000}, Current: Money{Cents: 249000}}
	if got := g.Remaining().Cents; got != 1000 {
		t.Errorf("Remaining = %d, want 1000", got)
	}
}
