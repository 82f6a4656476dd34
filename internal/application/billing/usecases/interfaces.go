package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/shared"
)

// RateProvider converts between currencies.
type RateProvider interface {
	Rate(ctx context.Context, from, to shared.Currency) (decimal.Decimal, error)
}
