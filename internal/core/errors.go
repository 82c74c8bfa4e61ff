package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. The four base errors classify every failure the engine
// can return; the specific sentinels wrap a base so callers can match
// either level with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrInsufficient = errors.New("insufficient resources")
	ErrNotFound     = errors.New("not found")
	ErrInvariant    = errors.New("invariant violation")
)

var (
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyTitle         = fmt.Errorf("%w: empty title", ErrValidation)
	ErrInvalidPriority    = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrGoalCompleted      = fmt.Errorf("%w: goal already completed", ErrValidation)
	ErrInsufficientPoints = fmt.Errorf("%w: not enough points", ErrInsufficient)
	ErrNoSpinsAvailable   = fmt.Errorf("%w: no free spins and not enough points", ErrInsufficient)
	ErrItemSoldOut        = fmt.Errorf("%w: item sold out", ErrInsufficient)
	ErrItemInactive       = fmt.Errorf("%w: item not active", ErrNotFound)
	ErrGoalNotFound       = fmt.Errorf("%w: goal", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("%w: shop item", ErrNotFound)
	ErrPrizeNotFound      = fmt.Errorf("%w: prize", ErrNotFound)
)
