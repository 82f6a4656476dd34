package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	// ListByUserID returns payments newest first.
	ListByUserID(ctx context.Context, userID uint) ([]*Payment, error)
	// ListBetween returns payments with from <= payment_date < to.
	ListBetween(ctx context.Context, from, to time.Time) ([]*Payment, error)
}
