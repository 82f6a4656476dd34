package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/domain/user"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type PaymentHistoryUseCase struct {
	users    user.Repository
	payments payment.Repository
	logger   logger.Interface
}

func NewPaymentHistoryUseCase(users user.Repository, payments payment.Repository, logger logger.Interface) *PaymentHistoryUseCase {
	return &PaymentHistoryUseCase{users: users, payments: payments, logger: logger}
}

// Execute lists the user's payments newest first. Deleted users keep their history.
func (uc *PaymentHistoryUseCase) Execute(ctx context.Context, username string) ([]*payment.Payment, error) {
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}

	payments, err := uc.payments.ListByUserID(ctx, u.ID())
	if err != nil {
		uc.logger.Errorw("failed to list payments", "username", username, "error", err)
		return nil, apperrors.NewInternalError("failed to list payments").WithCause(err)
	}
	return payments, nil
}

type EarningsReport struct {
	From    time.Time
	To      time.Time
	Count   int
	Credits decimal.Decimal
	Refunds decimal.Decimal
	// Totals is the net amount per currency.
	Totals map[shared.Currency]decimal.Decimal
}

type EarningsUseCase struct {
	payments payment.Repository
	logger   logger.Interface
}

func NewEarningsUseCase(payments payment.Repository, logger logger.Interface) *EarningsUseCase {
	return &EarningsUseCase{payments: payments, logger: logger}
}

// Execute sums payments with from <= payment_date < to.
func (uc *EarningsUseCase) Execute(ctx context.Context, from, to time.Time) (*EarningsReport, error) {
	if !to.After(from) {
		return nil, apperrors.NewValidationError("invalid range", "'to' must be after 'from'")
	}

	payments, err := uc.payments.ListBetween(ctx, from, to)
	if err != nil {
		uc.logger.Errorw("failed to list payments", "from", from, "to", to, "error", err)
		return nil, apperrors.NewInternalError("failed to list payments").WithCause(err)
	}

	report := &EarningsReport{
		From:    from,
		To:      to,
		Count:   len(payments),
		Credits: decimal.Zero,
		Refunds: decimal.Zero,
		Totals:  make(map[shared.Currency]decimal.Decimal),
	}
	for _, p := range payments {
		if p.IsCredit() {
			report.Credits = report.Credits.Add(p.Amount())
		} else {
			report.Refunds = report.Refunds.Add(p.Amount().Abs())
		}
		report.Totals[p.Currency()] = report.Totals[p.Currency()].Add(p.Amount())
	}
	return report, nil
}
