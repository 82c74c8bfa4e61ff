package http

import (
	"net/http"
	"time"

	"premi/internal/core"
)

type prizeResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	FaceValue string  `json:"face_value"`
	Weight    int     `json:"weight"`
	Angle     float64 `json:"angle"`
}

type spinResponse struct {
	Prize     prizeResponse `json:"prize"`
	Angle     float64       `json:"angle"`
	FreeSpin  bool          `json:"free_spin"`
	PointsWon int64         `json:"points_won"`
	Balance   int64         `json:"balance"`
}

type allowanceResponse struct {
	FreeSpinsRemaining int       `json:"free_spins_remaining"`
	NextResetAt        time.Time `json:"next_reset_at"`
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	res, err := s.rewards.Spin(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, spinResponse{
		Prize:     toPrizeResponse(res.Prize, res.Angle),
		Angle:     res.Angle,
		FreeSpin:  res.FreeSpin,
		PointsWon: res.PointsWon,
		Balance:   res.Balance,
	})
}

// handleWheel returns the prize table in wheel order, each entry with its
// wedge midpoint angle.
func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	prizes := s.rewards.Prizes()
	out := make([]prizeResponse, 0, len(prizes))
	for _, p := range prizes {
		angle, err := core.WheelAngle(prizes, p.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		out = append(out, toPrizeResponse(p, angle))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	a := s.rewards.Allowance()
	writeJSON(w, http.StatusOK, allowanceResponse{
		FreeSpinsRemaining: a.FreeSpinsRemaining,
		NextResetAt:        a.NextResetAt,
	})
}

func toPrizeResponse(p core.Prize, angle float64) prizeResponse {
	return prizeResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  string(p.Category),
		FaceValue: p.FaceValue,
		Weight:    p.Weight,
		Angle:     angle,
	}
}
