package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"premi/internal/core"
	"premi/internal/engine"
	"premi/internal/stats"
)

type goalResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	TargetCents    int64      `json:"target_cents"`
	CurrentCents   int64      `json:"current_cents"`
	RemainingCents int64      `json:"remaining_cents"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	DaysUntil      int        `json:"days_until"`
	Priority       string     `json:"priority"`
	PointsReward   int64      `json:"points_reward"`
	State          string     `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type createGoalRequest struct {
	Title    string `json:"title"`
	Target   string `json:"target"`   // decimal amount, e.g. "2500.00"
	Deadline string `json:"deadline"` // YYYY-MM-DD, optional
	Priority string `json:"priority"`
}

type editGoalRequest struct {
	Title    *string `json:"title"`
	Target   *string `json:"target"`
	Deadline *string `json:"deadline"`
	Priority *string `json:"priority"`
}

type contributeRequest struct {
	Amount string `json:"amount"`
}

type contributeResponse struct {
	Goal           goalResponse `json:"goal"`
	AppliedCents   int64        `json:"applied_cents"`
	Completed      bool         `json:"completed"`
	RewardCredited int64        `json:"reward_credited"`
	Balance        int64        `json:"balance"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	state := s.rewards.Snapshot()
	now := time.Now()

	out := make([]goalResponse, 0, len(state.Goals))
	for _, g := range state.Goals {
		out = append(out, toGoalResponse(g, now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := core.ParseAmount(req.Target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var deadline time.Time
	if req.Deadline != "" {
		deadline, err = time.ParseInLocation("2006-01-02", req.Deadline, time.Local)
		if err != nil {
			writeDomainError(w, r, fmt.Errorf("deadline %q: %w", req.Deadline, core.ErrValidation))
			return
		}
	}

	g, err := s.rewards.CreateGoal(r.Context(), req.Title, target, deadline, core.GoalPriority(req.Priority))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(g, time.Now()))
}

func (s *Server) handleEditGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := parseGoalID(w, r)
	if !ok {
		return
	}

	var req editGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var upd engine.GoalUpdate
	upd.Title = req.Title
	if req.Target != nil {
		target, err := core.ParseAmount(*req.Target)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		upd.Target = &target
	}
	if req.Deadline != nil {
		deadline, err := time.ParseInLocation("2006-01-02", *req.Deadline, time.Local)
		if err != nil {
			writeDomainError(w, r, fmt.Errorf("deadline %q: %w", *req.Deadline, core.ErrValidation))
			return
		}
		upd.Deadline = &deadline
	}
	if req.Priority != nil {
		p := core.GoalPriority(*req.Priority)
		upd.Priority = &p
	}

	g, err := s.rewards.EditGoal(r.Context(), goalID, upd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(g, time.Now()))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := parseGoalID(w, r)
	if !ok {
		return
	}

	if err := s.rewards.DeleteGoal(r.Context(), goalID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	goalID, ok := parseGoalID(w, r)
	if !ok {
		return
	}

	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res, err := s.rewards.Contribute(r.Context(), goalID, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contributeResponse{
		Goal:           toGoalResponse(res.Goal, time.Now()),
		AppliedCents:   res.Applied.Cents,
		Completed:      res.Completed,
		RewardCredited: res.RewardCredited,
		Balance:        s.rewards.Snapshot().Balance,
	})
}

func parseGoalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("goal id %q: %w", r.PathValue("id"), core.ErrValidation))
		return uuid.Nil, false
	}
	return id, true
}

func toGoalResponse(g core.Goal, now time.Time) goalResponse {
	resp := goalResponse{
		ID:             g.ID.String(),
		Title:          g.Title,
		TargetCents:    g.Target.Cents,
		CurrentCents:   g.Current.Cents,
		RemainingCents: g.Remaining().Cents,
		Priority:       string(g.Priority),
		PointsReward:   g.PointsReward,
		State:          string(g.State),
		CreatedAt:      g.CreatedAt,
	}
	if !g.Deadline.IsZero() {
		d := g.Deadline
		resp.Deadline = &d
		resp.DaysUntil = stats.DaysUntil(g.Deadline, now)
	}
	if !g.CompletedAt.IsZero() {
		c := g.CompletedAt
		resp.CompletedAt = &c
	}
	return resp
}
