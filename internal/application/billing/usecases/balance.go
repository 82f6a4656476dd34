package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/db"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type BalanceCommand struct {
	Username string
	Amount   decimal.Decimal
	Currency string
}

type BalanceResult struct {
	Username string
	Payment  *payment.Payment
	Balance  decimal.Decimal
}

// BalanceUseCase records payments and refunds. Each call creates one Payment
// in INR and moves the balance through the ledger in the same transaction.
type BalanceUseCase struct {
	users     user.Repository
	payments  payment.Repository
	txManager db.Runner
	rates     RateProvider
	logger    logger.Interface
	now       func() time.Time
}

func NewBalanceUseCase(
	users user.Repository,
	payments payment.Repository,
	txManager db.Runner,
	rates RateProvider,
	logger logger.Interface,
) *BalanceUseCase {
	return &BalanceUseCase{
		users:     users,
		payments:  payments,
		txManager: txManager,
		rates:     rates,
		logger:    logger,
		now:       biztime.NowUTC,
	}
}

// Credit records a payment of cmd.Amount and adds it to the balance.
func (uc *BalanceUseCase) Credit(ctx context.Context, cmd BalanceCommand) (*BalanceResult, error) {
	return uc.execute(ctx, cmd, user.TransactionCredit)
}

// Debit refunds cmd.Amount. It fails without any change when the balance
// does not cover it.
func (uc *BalanceUseCase) Debit(ctx context.Context, cmd BalanceCommand) (*BalanceResult, error) {
	return uc.execute(ctx, cmd, user.TransactionDebit)
}

func (uc *BalanceUseCase) execute(ctx context.Context, cmd BalanceCommand, kind user.TransactionKind) (*BalanceResult, error) {
	if !cmd.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be positive")
	}
	currency, err := shared.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid currency", err.Error())
	}

	u, err := uc.users.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", cmd.Username))
	}

	rate, err := uc.rateToBase(ctx, currency)
	if err != nil {
		uc.logger.Errorw("failed to get exchange rate", "currency", currency, "error", err)
		return nil, apperrors.NewInternalError("exchange rate unavailable").WithCause(err)
	}

	signed := cmd.Amount
	if kind == user.TransactionDebit {
		signed = signed.Neg()
	}
	p, err := payment.NewPayment(u.ID(), signed, currency, rate, uc.now())
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payment", err.Error()).WithCause(err)
	}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := u.ApplyTransaction(p.Amount().Abs(), kind); err != nil {
			return err
		}
		if err := uc.users.Update(ctx, u); err != nil {
			return err
		}
		return uc.payments.Create(ctx, p)
	})
	if err != nil {
		if errors.Is(err, user.ErrInsufficientBalance) {
			uc.logger.Warnw("refund exceeds balance", "username", cmd.Username, "amount", p.Amount().String())
			return nil, apperrors.NewValidationError("insufficient balance", err.Error()).WithCause(err)
		}
		uc.logger.Errorw("failed to record payment", "username", cmd.Username, "kind", kind, "error", err)
		return nil, apperrors.NewInternalError("failed to record payment").WithCause(err)
	}

	uc.logger.Infow("balance updated",
		"username", cmd.Username,
		"kind", kind,
		"amount_inr", p.Amount().String(),
		"balance", u.Balance().String(),
	)
	return &BalanceResult{Username: u.LinuxUsername(), Payment: p, Balance: u.Balance()}, nil
}

func (uc *BalanceUseCase) rateToBase(ctx context.Context, currency shared.Currency) (decimal.Decimal, error) {
	if currency == shared.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}
	if uc.rates == nil {
		return decimal.Zero, errors.New("no exchange rate provider configured")
	}
	return uc.rates.Rate(ctx, currency, shared.BaseCurrency)
}
