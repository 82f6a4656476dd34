package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

const secondsPerDay = 86400

// SweepResult summarizes one deduction pass.
type SweepResult struct {
	Charged int
	Lapsed  int
	Skipped int
	Failed  int
	Total   decimal.Decimal
}

type lapse struct {
	userID   uint
	username string
	balance  decimal.Decimal
	due      decimal.Decimal
}

// DeductionSweepUseCase charges every billable rental for the whole days
// elapsed since its owner's last deduction.
type DeductionSweepUseCase struct {
	users      user.Repository
	rentals    rental.Repository
	txManager  db.Runner
	dispatcher *notifyuc.Dispatcher
	hour       int
	minute     int
	logger     logger.Interface
}

func NewDeductionSweepUseCase(
	users user.Repository,
	rentals rental.Repository,
	txManager db.Runner,
	dispatcher *notifyuc.Dispatcher,
	hour, minute int,
	logger logger.Interface,
) *DeductionSweepUseCase {
	return &DeductionSweepUseCase{
		users:      users,
		rentals:    rentals,
		txManager:  txManager,
		dispatcher: dispatcher,
		hour:       hour,
		minute:     minute,
		logger:     logger,
	}
}

// Execute runs one sweep at now. Each rental is settled in its own
// transaction; a failure is logged and does not stop the pass.
func (uc *DeductionSweepUseCase) Execute(ctx context.Context, now time.Time) (*SweepResult, error) {
	owned, err := uc.rentals.ListWithOwners(ctx, rental.Filter{
		Active:  rental.BoolPtr(true),
		Expired: rental.BoolPtr(false),
	})
	if err != nil {
		uc.logger.Errorw("failed to list billable rentals", "error", err)
		return nil, err
	}

	anchor := biztime.LatestDailyAtUTC(now, uc.hour, uc.minute)
	result := &SweepResult{Total: decimal.Zero}
	var lapses []lapse

	for _, o := range owned {
		charged, lapsed, err := uc.settle(ctx, o.Rental.ID(), o.Owner.ID(), now, anchor)
		switch {
		case err != nil:
			result.Failed++
			uc.logger.Errorw("failed to settle rental",
				"rental_id", o.Rental.ID(),
				"username", o.Owner.LinuxUsername(),
				"error", err,
			)
		case lapsed != nil:
			result.Lapsed++
			lapses = append(lapses, *lapsed)
		case charged.IsPositive():
			result.Charged++
			result.Total = result.Total.Add(charged)
		default:
			result.Skipped++
		}
	}

	for _, l := range lapses {
		uc.dispatcher.NotifyUser(ctx, l.userID, func(name string) string {
			return notifyuc.LapsedMessage(name, l.balance, l.due)
		})
		uc.dispatcher.NotifyAdmin(ctx, notifyuc.AdminLapsedMessage(l.username, l.balance, l.due), notifyuc.AdminActions(l.username)...)
	}

	uc.logger.Infow("deduction sweep completed",
		"rentals", len(owned),
		"charged", result.Charged,
		"lapsed", result.Lapsed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"total", result.Total.String(),
	)
	return result, nil
}

// settle reloads the rental and its owner inside a transaction so a rerun or
// a concurrent admin edit sees committed state.
func (uc *DeductionSweepUseCase) settle(ctx context.Context, rentalID, userID uint, now, anchor time.Time) (decimal.Decimal, *lapse, error) {
	charged := decimal.Zero
	var lapsed *lapse

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := uc.rentals.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if r == nil || !r.IsBillable() {
			return nil
		}
		u, err := uc.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil || u.IsDeleted() {
			return nil
		}

		last := u.LastDeductionTime()
		if last == 0 {
			last = r.StartTime()
		}
		days := (now.Unix() - last) / secondsPerDay
		if days < 1 {
			return nil
		}

		due := r.PriceRate().Mul(decimal.NewFromInt(days))
		if err := u.Debit(due); err != nil {
			if !errors.Is(err, user.ErrInsufficientBalance) {
				return err
			}
			if err := r.DeactivateForInsufficientBalance(); err != nil {
				return err
			}
			lapsed = &lapse{userID: u.ID(), username: u.LinuxUsername(), balance: u.Balance(), due: due}
			uc.logger.Warnw("rental lapsed for insufficient balance",
				"rental_id", r.ID(),
				"username", u.LinuxUsername(),
				"balance", u.Balance().String(),
				"due", due.String(),
			)
			return uc.rentals.Update(ctx, r)
		}

		u.AdvanceDeduction(anchor.Unix())
		if err := uc.users.Update(ctx, u); err != nil {
			return err
		}
		charged = due
		uc.logger.Infow("rental charged",
			"rental_id", r.ID(),
			"username", u.LinuxUsername(),
			"days", days,
			"amount", due.String(),
			"balance", u.Balance().String(),
		)
		return nil
	})
	if err != nil {
		return decimal.Zero, nil, err
	}
	return charged, lapsed, nil
}
