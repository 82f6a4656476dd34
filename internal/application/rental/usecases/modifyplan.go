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
)

type ModifyPlanCommand struct {
	// Username is a linux username or AllUsers.
	Username string
	// Duration uses the compact unit form, e.g. "7d" or "1d12h".
	Duration string
	// Amount, when positive, is recorded as a payment and credited in the
	// same transaction as the extension. Extend with a single user only.
	Amount   decimal.Decimal
	Currency string
}

// PlanChange is the outcome for one rental. Err is set when that rental was
// left unchanged or its timers could not be updated.
type PlanChange struct {
	Username string
	RentalID uint
	EndTime  int64
	Err      error
}

type ModifyPlanResult struct {
	Seconds int64
	Changes []PlanChange
	// Payment and Balance are set when the extension carried a payment.
	Payment *payment.Payment
	Balance decimal.Decimal
}

type ModifyPlanUseCase struct {
	users      user.Repository
	rentals    rental.Repository
	payments   payment.Repository
	txManager  db.Runner
	scheduler  RentalScheduler
	rates      RateProvider
	dispatcher *notifyuc.Dispatcher
	logger     logger.Interface
	now        func() time.Time
}

func NewModifyPlanUseCase(
	users user.Repository,
	rentals rental.Repository,
	payments payment.Repository,
	txManager db.Runner,
	scheduler RentalScheduler,
	rates RateProvider,
	dispatcher *notifyuc.Dispatcher,
	logger logger.Interface,
) *ModifyPlanUseCase {
	return &ModifyPlanUseCase{
		users:      users,
		rentals:    rentals,
		payments:   payments,
		txManager:  txManager,
		scheduler:  scheduler,
		rates:      rates,
		dispatcher: dispatcher,
		logger:     logger,
		now:        biztime.NowUTC,
	}
}

// Extend pushes end_time forward and clears the expiry flags.
func (uc *ModifyPlanUseCase) Extend(ctx context.Context, cmd ModifyPlanCommand) (*ModifyPlanResult, error) {
	return uc.execute(ctx, cmd, true)
}

// Reduce pulls end_time back; a rental whose end_time would pass now is left unchanged.
func (uc *ModifyPlanUseCase) Reduce(ctx context.Context, cmd ModifyPlanCommand) (*ModifyPlanResult, error) {
	return uc.execute(ctx, cmd, false)
}

func (uc *ModifyPlanUseCase) execute(ctx context.Context, cmd ModifyPlanCommand, extend bool) (*ModifyPlanResult, error) {
	seconds := timefmt.ParseDuration(cmd.Duration)
	if seconds <= 0 {
		return nil, apperrors.NewValidationError("invalid duration", fmt.Sprintf("could not parse %q, use units d/h/m/s", cmd.Duration))
	}

	withPayment := !cmd.Amount.IsZero()
	if withPayment {
		switch {
		case !extend:
			return nil, apperrors.NewValidationError("a payment can only accompany an extension")
		case cmd.Username == AllUsers:
			return nil, apperrors.NewValidationError("a payment needs a single user, not all")
		case !cmd.Amount.IsPositive():
			return nil, apperrors.NewValidationError("amount must be positive")
		}
	}

	targets, err := uc.targets(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}

	var p *payment.Payment
	if withPayment {
		if p, err = uc.newPayment(ctx, targets[0].Owner.ID(), cmd); err != nil {
			return nil, err
		}
	}

	result := &ModifyPlanResult{Seconds: seconds}
	for _, t := range targets {
		result.Changes = append(result.Changes, uc.apply(ctx, t, seconds, extend, p))
	}

	if cmd.Username != AllUsers && len(result.Changes) == 1 && result.Changes[0].Err != nil {
		return nil, mapPlanError(result.Changes[0].Err)
	}
	if p != nil {
		result.Payment = p
		result.Balance = targets[0].Owner.Balance()
	}
	return result, nil
}

// newPayment normalizes cmd.Amount to INR. An empty currency means INR.
func (uc *ModifyPlanUseCase) newPayment(ctx context.Context, userID uint, cmd ModifyPlanCommand) (*payment.Payment, error) {
	currency := shared.BaseCurrency
	if cmd.Currency != "" {
		c, err := shared.ParseCurrency(cmd.Currency)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid currency", err.Error())
		}
		currency = c
	}

	rate := decimal.NewFromInt(1)
	if currency != shared.BaseCurrency {
		if uc.rates == nil {
			return nil, apperrors.NewInternalError("exchange rate unavailable")
		}
		var err error
		if rate, err = uc.rates.Rate(ctx, currency, shared.BaseCurrency); err != nil {
			uc.logger.Errorw("failed to get exchange rate", "currency", currency, "error", err)
			return nil, apperrors.NewInternalError("exchange rate unavailable").WithCause(err)
		}
	}

	p, err := payment.NewPayment(userID, cmd.Amount, currency, rate, uc.now())
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payment", err.Error()).WithCause(err)
	}
	return p, nil
}

func (uc *ModifyPlanUseCase) targets(ctx context.Context, username string) ([]rental.Ownership, error) {
	if username == AllUsers {
		owned, err := uc.rentals.ListWithOwners(ctx, rental.Filter{Active: rental.BoolPtr(true)})
		if err != nil {
			uc.logger.Errorw("failed to list active rentals", "error", err)
			return nil, apperrors.NewInternalError("failed to list active rentals").WithCause(err)
		}
		return owned, nil
	}

	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}
	r, err := uc.rentals.GetCurrentByUserID(ctx, u.ID())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get rental").WithCause(err)
	}
	if r == nil || !r.IsActive() {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s has no active rental", username))
	}
	return []rental.Ownership{{Rental: r, Owner: u}}, nil
}

func (uc *ModifyPlanUseCase) apply(ctx context.Context, t rental.Ownership, seconds int64, extend bool, p *payment.Payment) PlanChange {
	r := t.Rental
	change := PlanChange{Username: t.Owner.LinuxUsername(), RentalID: r.ID(), EndTime: r.EndTime()}
	now := uc.now()

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if extend {
			err = r.Extend(seconds, now)
		} else {
			err = r.Reduce(seconds, now)
		}
		if err != nil {
			return err
		}
		if err := uc.rentals.Update(ctx, r); err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		if err := t.Owner.Credit(p.Amount()); err != nil {
			return err
		}
		if err := uc.users.Update(ctx, t.Owner); err != nil {
			return err
		}
		return uc.payments.Create(ctx, p)
	})
	if err != nil {
		uc.logger.Warnw("plan change rejected",
			"username", change.Username,
			"rental_id", r.ID(),
			"extend", extend,
			"seconds", seconds,
			"error", err,
		)
		change.Err = err
		return change
	}
	change.EndTime = r.EndTime()

	if err := uc.scheduler.ScheduleRentalJobs(ctx, r); err != nil {
		uc.logger.Errorw("failed to reschedule rental jobs", "rental_id", r.ID(), "error", err)
		change.Err = fmt.Errorf("plan changed but timers were not updated: %w", err)
	}

	uc.logger.Infow("plan changed",
		"username", change.Username,
		"rental_id", r.ID(),
		"extend", extend,
		"seconds", seconds,
		"end_time", change.EndTime,
		"payment_inr", paymentAmount(p),
	)

	if extend {
		uc.dispatcher.NotifyUser(ctx, r.UserID(), func(name string) string {
			return notifyuc.ExtendedMessage(name, seconds, r.EndTime(), biztime.Location())
		})
	}
	return change
}

func mapPlanError(err error) error {
	switch {
	case errors.Is(err, rental.ErrReductionExceedsRemainingTime):
		return apperrors.NewValidationError("reduction exceeds remaining time", err.Error()).WithCause(err)
	case errors.Is(err, rental.ErrRentalZombie):
		return apperrors.NewConflictError("rental is closed").WithCause(err)
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.NewInternalError("failed to change plan").WithCause(err)
	}
}

func paymentAmount(p *payment.Payment) string {
	if p == nil {
		return "0"
	}
	return p.Amount().String()
}
