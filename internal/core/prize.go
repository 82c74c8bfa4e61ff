package core

import (
	"fmt"
	"strings"
	"unicode"
)

// PrizeCategory classifies what a lottery prize pays out.
type PrizeCategory string

const (
	CategoryVoucher  PrizeCategory = "voucher"
	CategoryPoints   PrizeCategory = "points"
	CategoryCashback PrizeCategory = "cashback"
	CategoryGift     PrizeCategory = "gift"
)

// Valid reports whether the category is one of the known values.
func (c PrizeCategory) Valid() bool {
	switch c {
	case CategoryVoucher, CategoryPoints, CategoryCashback, CategoryGift:
		return true
	}
	return false
}

// Prize is one entry of the lottery table. The table is supplied once per
// session by the catalog collaborator and is read-only afterwards.
type Prize struct {
	ID        string
	Name      string
	Category  PrizeCategory
	FaceValue string // display value, e.g. "RM 20" or "100 pts"
	Weight    int    // probability weight, 0-100
}

// PointsValue extracts the numeric points amount encoded in the face value
// of a points-category prize ("100 pts" -> 100). Returns ErrValidation for
// non-points prizes or face values without a number.
func (p Prize) PointsValue() (int64, error) {
	if p.Category != CategoryPoints {
		return 0, fmt.Errorf("%w: prize %s is not a points prize", ErrValidation, p.ID)
	}
	var n int64
	seen := false
	for _, r := range p.FaceValue {
		if unicode.IsDigit(r) {
			n = n*10 + int64(r-'0')
			seen = true
			continue
		}
		if seen {
			break
		}
	}
	if !seen {
		return 0, fmt.Errorf("%w: prize %s has no numeric face value %q", ErrValidation, p.ID, p.FaceValue)
	}
	return n, nil
}

// ValidatePrizes checks a prize table at load time. Weights must each be in
// [0,100] and sum to exactly 100; a table that does not is a configuration
// error and is rejected loudly instead of silently routing the residual
// probability mass to the last entry.
func ValidatePrizes(prizes []Prize) error {
	if len(prizes) == 0 {
		return fmt.Errorf("%w: empty prize table", ErrInvariant)
	}
	seen := make(map[string]bool, len(prizes))
	sum := 0
	for _, p := range prizes {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: prize with empty id", ErrInvariant)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate prize id %s", ErrInvariant, p.ID)
		}
		seen[p.ID] = true
		if !p.Category.Valid() {
			return fmt.Errorf("%w: prize %s has unknown category %q", ErrInvariant, p.ID, p.Category)
		}
		if p.Weight < 0 || p.Weight > 100 {
			return fmt.Errorf("%w: prize %s has weight %d outside [0,100]", ErrInvariant, p.ID, p.Weight)
		}
		sum += p.Weight
	}
	if sum != 100 {
		return fmt.Errorf("%w: prize weights sum to %d, want 100", ErrInvariant, sum)
	}
	return nil
}

// DrawPrize selects a prize by cumulative probability sampling: walk the
// table in its fixed order accumulating weights and return the first prize
// whose cumulative weight exceeds u. u must be uniform in [0,100) and the
// table must have passed ValidatePrizes.
func DrawPrize(prizes []Prize, u float64) Prize {
	cum := 0.0
	for _, p := range prizes {
		cum += float64(p.Weight)
		if u < cum {
			return p
		}
	}
	// Unreachable for a validated table; guard against float edge cases.
	return prizes[len(prizes)-1]
}

// WheelAngle returns the rotation target in degrees for a prize: the middle
// of its wedge on a wheel laid out in table order, each wedge proportional
// to its weight. Computed from the table alone so the displayed outcome can
// never desynchronize from the logical draw.
func WheelAngle(prizes []Prize, prizeID string) (float64, error) {
	cum := 0
	for _, p := range prizes {
		if p.ID == prizeID {
			return (float64(cum) + float64(p.Weight)/2) * 3.6, nil
		}
		cum += p.Weight
	}
	return 0, fmt.Errorf("%w: %s", ErrPrizeNotFound, prizeID)
}
