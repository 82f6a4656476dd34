package rental

import (
	"context"

	"github.com/orris-inc/leasebot/internal/domain/user"
)

// Filter is an exact-match filter; nil fields are ignored. Zombie rows are
// excluded unless IncludeZombie is set.
type Filter struct {
	UserID        *uint
	Active        *bool
	Expired       *bool
	IncludeZombie bool
}

// Ownership is a rental joined with its owner.
type Ownership struct {
	Rental *Rental
	Owner  *user.User
}

type Repository interface {
	Create(ctx context.Context, r *Rental) error
	Update(ctx context.Context, r *Rental) error
	GetByID(ctx context.Context, id uint) (*Rental, error)
	// GetCurrentByUserID returns the newest non-zombie rental, or nil.
	GetCurrentByUserID(ctx context.Context, userID uint) (*Rental, error)
	List(ctx context.Context, filter Filter) ([]*Rental, error)
	ListWithOwners(ctx context.Context, filter Filter) ([]Ownership, error)
}

func BoolPtr(b bool) *bool {
	return &b
}
