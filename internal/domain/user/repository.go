package user

import "context"

// Filter narrows List. Zero value returns only live accounts.
type Filter struct {
	IncludeDeleted bool
	Username       string
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	// GetByID and the other lookups return nil, nil when nothing matches.
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUUID(ctx context.Context, uuid string) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, error)
}
