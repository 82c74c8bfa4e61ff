package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"premi/internal/core"
)

type shopItemResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	EffectivePrice  int64  `json:"effective_price"`
	DiscountPercent int    `json:"discount_percent"`
	Active          bool   `json:"active"`
	Unlimited       bool   `json:"unlimited"`
	StockRemaining  int    `json:"stock_remaining"` // -1 for unlimited items
}

type redeemRequest struct {
	ItemID string `json:"item_id"`
}

type redemptionResponse struct {
	RedemptionID string    `json:"redemption_id"`
	ItemID       string    `json:"item_id"`
	PricePaid    int64     `json:"price_paid"`
	Balance      int64     `json:"balance"`
	At           time.Time `json:"at"`
}

// handleShop lists the catalog with live stock counts.
func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	state := s.rewards.Snapshot()
	items := s.rewards.Items()

	out := make([]shopItemResponse, 0, len(items))
	for _, it := range items {
		remaining, ok := state.Stock[it.ID]
		if !ok {
			remaining = it.Stock
		}
		out = append(out, shopItemResponse{
			ID:              it.ID,
			Name:            it.Name,
			Price:           it.Price,
			EffectivePrice:  it.EffectivePrice(),
			DiscountPercent: it.DiscountPercent,
			Active:          it.Active,
			Unlimited:       it.Unlimited(),
			StockRemaining:  remaining,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		writeDomainError(w, r, fmt.Errorf("redeem: missing item_id: %w", core.ErrValidation))
		return
	}

	rec, err := s.rewards.Redeem(r.Context(), req.ItemID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, redemptionResponse{
		RedemptionID: rec.ID.String(),
		ItemID:       rec.ItemID,
		PricePaid:    rec.PricePaid,
		Balance:      s.rewards.Snapshot().Balance,
		At:           rec.At,
	})
}
