package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/shared"
)

// Provisioner manages the host login behind an account.
type Provisioner interface {
	CreateAccount(ctx context.Context, username, password string) error
	// DeleteAccount reports false when there was no login to remove.
	DeleteAccount(ctx context.Context, username string) (bool, error)
	// ChangePassword sets and returns a freshly generated password.
	ChangePassword(ctx context.Context, username string) (string, error)
}

// SessionLister reports the logins active on the host.
type SessionLister interface {
	Sessions(ctx context.Context) (string, error)
}

type RentalScheduler interface {
	ScheduleRentalJobs(ctx context.Context, r *rental.Rental) error
	RemoveRentalJobs(ctx context.Context, rentalID uint) error
}

type RateProvider interface {
	Rate(ctx context.Context, from, to shared.Currency) (decimal.Decimal, error)
}
