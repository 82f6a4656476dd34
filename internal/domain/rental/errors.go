package rental

import (
	"errors"
	"fmt"
)

var (
	ErrRentalNotFound                = errors.New("rental not found")
	ErrRentalZombie                  = errors.New("rental is closed")
	ErrReductionExceedsRemainingTime = errors.New("reduction exceeds remaining time")
	ErrInvalidStateTransition        = errors.New("invalid rental state transition")
	ErrNoCurrentRental               = errors.New("user has no current rental")
	ErrInvalidDuration               = errors.New("invalid rental duration")
)

func errInvalidTransition(from State, action string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidStateTransition, action, from)
}
