package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/db"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/timefmt"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

type CreateUserCommand struct {
	Username string
	// Duration uses the compact unit form, e.g. "30d".
	Duration  string
	PriceRate decimal.Decimal
	// Amount is the initial payment; zero records none.
	Amount   decimal.Decimal
	Currency string
}

type CreateUserResult struct {
	User        *user.User
	Rental      *rental.Rental
	Password    string
	Reactivated bool
}

// CreateUserUseCase provisions a login and opens its first rental. A deleted
// username is reactivated with fresh credentials and a zero balance.
type CreateUserUseCase struct {
	users       user.Repository
	rentals     rental.Repository
	payments    payment.Repository
	txManager   db.Runner
	provisioner Provisioner
	scheduler   RentalScheduler
	rates       RateProvider
	dispatcher  *notifyuc.Dispatcher
	logger      logger.Interface
	now         func() time.Time
	password    func() string
}

func NewCreateUserUseCase(
	users user.Repository,
	rentals rental.Repository,
	payments payment.Repository,
	txManager db.Runner,
	provisioner Provisioner,
	scheduler RentalScheduler,
	rates RateProvider,
	dispatcher *notifyuc.Dispatcher,
	logger logger.Interface,
) *CreateUserUseCase {
	return &CreateUserUseCase{
		users:       users,
		rentals:     rentals,
		payments:    payments,
		txManager:   txManager,
		provisioner: provisioner,
		scheduler:   scheduler,
		rates:       rates,
		dispatcher:  dispatcher,
		logger:      logger,
		now:         biztime.NowUTC,
		password:    utils.GeneratePassword,
	}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (*CreateUserResult, error) {
	if err := uc.validate(cmd); err != nil {
		return nil, err
	}
	currency, err := shared.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid currency", err.Error())
	}
	seconds := timefmt.ParseDuration(cmd.Duration)

	existing, err := uc.users.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if existing != nil && !existing.IsDeleted() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("user %s already exists", cmd.Username))
	}

	rate := decimal.NewFromInt(1)
	if cmd.Amount.IsPositive() && currency != shared.BaseCurrency {
		if uc.rates == nil {
			return nil, apperrors.NewInternalError("exchange rate unavailable")
		}
		if rate, err = uc.rates.Rate(ctx, currency, shared.BaseCurrency); err != nil {
			uc.logger.Errorw("failed to get exchange rate", "currency", currency, "error", err)
			return nil, apperrors.NewInternalError("exchange rate unavailable").WithCause(err)
		}
	}

	password := uc.password()
	if err := uc.provisioner.CreateAccount(ctx, cmd.Username, password); err != nil {
		uc.logger.Errorw("failed to provision account", "username", cmd.Username, "error", err)
		return nil, apperrors.NewInternalError("failed to create server account").WithCause(err)
	}

	now := uc.now()
	result := &CreateUserResult{Password: password, Reactivated: existing != nil}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		u := existing
		if u != nil {
			if err := u.Reactivate(password, now); err != nil {
				return err
			}
			if err := uc.users.Update(ctx, u); err != nil {
				return err
			}
		} else {
			var err error
			if u, err = user.NewUser(cmd.Username, password, now); err != nil {
				return err
			}
			if err := uc.users.Create(ctx, u); err != nil {
				return err
			}
		}

		r, err := rental.NewRental(u.ID(), now, seconds, cmd.Amount, currency, cmd.PriceRate)
		if err != nil {
			return err
		}
		if err := uc.rentals.Create(ctx, r); err != nil {
			return err
		}

		if cmd.Amount.IsPositive() {
			p, err := payment.NewPayment(u.ID(), cmd.Amount, currency, rate, now)
			if err != nil {
				return err
			}
			if err := u.Credit(p.Amount()); err != nil {
				return err
			}
			if err := uc.users.Update(ctx, u); err != nil {
				return err
			}
			if err := uc.payments.Create(ctx, p); err != nil {
				return err
			}
		}

		result.User = u
		result.Rental = r
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to store new user", "username", cmd.Username, "error", err)
		uc.rollbackAccount(ctx, cmd.Username)
		if errors.Is(err, user.ErrInvalidUsername) || errors.Is(err, rental.ErrInvalidDuration) {
			return nil, apperrors.NewValidationError("invalid user", err.Error()).WithCause(err)
		}
		return nil, apperrors.NewInternalError("failed to create user").WithCause(err)
	}

	if err := uc.scheduler.ScheduleRentalJobs(ctx, result.Rental); err != nil {
		uc.logger.Errorw("failed to schedule rental jobs", "rental_id", result.Rental.ID(), "error", err)
	}

	uc.logger.Infow("user created",
		"username", cmd.Username,
		"user_id", result.User.ID(),
		"rental_id", result.Rental.ID(),
		"reactivated", result.Reactivated,
		"end_time", result.Rental.EndTime(),
	)

	uc.dispatcher.NotifyAdmin(ctx, notifyuc.AdminAccountCreatedMessage(
		cmd.Username, password, result.User.UUID(), result.Rental.EndTime(), result.Reactivated, biztime.Location(),
	))
	return result, nil
}

func (uc *CreateUserUseCase) validate(cmd CreateUserCommand) error {
	if err := user.ValidateUsername(cmd.Username); err != nil {
		return apperrors.NewValidationError("invalid username", err.Error())
	}
	if timefmt.ParseDuration(cmd.Duration) <= 0 {
		return apperrors.NewValidationError("invalid duration", fmt.Sprintf("could not parse %q, use units d/h/m/s", cmd.Duration))
	}
	if cmd.PriceRate.IsNegative() {
		return apperrors.NewValidationError("price rate cannot be negative")
	}
	if cmd.Amount.IsNegative() {
		return apperrors.NewValidationError("amount cannot be negative")
	}
	return nil
}

// rollbackAccount removes the login created for a user that could not be stored.
func (uc *CreateUserUseCase) rollbackAccount(ctx context.Context, username string) {
	if _, err := uc.provisioner.DeleteAccount(ctx, username); err != nil {
		uc.logger.Errorw("failed to remove orphaned account", "username", username, "error", err)
	}
}
