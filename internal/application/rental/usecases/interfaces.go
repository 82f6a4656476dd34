package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/shared"
)

// AllUsers targets every active rental in plan commands.
const AllUsers = "all"

// RentalScheduler keeps a rental's expiration and notification timers in step
// with its end_time.
type RentalScheduler interface {
	ScheduleRentalJobs(ctx context.Context, r *rental.Rental) error
	RemoveRentalJobs(ctx context.Context, rentalID uint) error
}

// AccessRevoker cuts remote access when a plan expires.
type AccessRevoker interface {
	RevokeRemoteAccess(ctx context.Context, username string) (bool, string, error)
}

// RateProvider converts a payment currency to INR.
type RateProvider interface {
	Rate(ctx context.Context, from, to shared.Currency) (decimal.Decimal, error)
}
