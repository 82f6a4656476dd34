package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/application/testutil"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
)

type fixedRate struct {
	rate decimal.Decimal
	err  error
}

func (f fixedRate) Rate(context.Context, shared.Currency, shared.Currency) (decimal.Decimal, error) {
	return f.rate, f.err
}

func newBalanceUseCase(env *testutil.Env, rates RateProvider) *BalanceUseCase {
	uc := NewBalanceUseCase(env.Users, env.Payments, env.TxManager, rates, env.Logger)
	uc.now = func() time.Time { return time.Date(2025, time.March, 11, 4, 30, 0, 0, time.UTC) }
	return uc
}

func TestBalance_CreditINR(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.CreateUser(t, "alice", decimal.Zero, time.Now())
	uc := newBalanceUseCase(env, nil)

	res, err := uc.Credit(context.Background(), BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(250)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(res.Balance))
	assert.True(t, decimal.NewFromInt(250).Equal(env.ReloadUser(t, u.ID()).Balance()))

	payments, err := env.Payments.ListByUserID(context.Background(), u.ID())
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].IsCredit())
	assert.Equal(t, shared.CurrencyINR, payments[0].Currency())
}

func TestBalance_CreditUSDNormalizesToINR(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.CreateUser(t, "alice", decimal.Zero, time.Now())
	uc := newBalanceUseCase(env, fixedRate{rate: decimal.RequireFromString("83.25")})

	res, err := uc.Credit(context.Background(), BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(10), Currency: "usd"})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("832.5").Equal(res.Payment.Amount()))
	assert.Equal(t, shared.CurrencyINR, res.Payment.Currency())
	assert.True(t, decimal.RequireFromString("832.5").Equal(env.ReloadUser(t, u.ID()).Balance()))
}

func TestBalance_RateFailureLeavesBalance(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.CreateUser(t, "alice", decimal.Zero, time.Now())
	uc := newBalanceUseCase(env, fixedRate{err: errors.New("upstream down")})

	_, err := uc.Credit(context.Background(), BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(10), Currency: "USD"})
	require.Error(t, err)
	assert.True(t, env.ReloadUser(t, u.ID()).Balance().IsZero())
}

func TestBalance_DebitRefunds(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.CreateUser(t, "alice", decimal.NewFromInt(100), time.Now())
	uc := newBalanceUseCase(env, nil)

	res, err := uc.Debit(context.Background(), BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-40).Equal(res.Payment.Amount()))
	assert.True(t, decimal.NewFromInt(60).Equal(env.ReloadUser(t, u.ID()).Balance()))
}

func TestBalance_DebitExceedingBalanceChangesNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.CreateUser(t, "alice", decimal.NewFromInt(30), time.Now())
	uc := newBalanceUseCase(env, nil)

	_, err := uc.Debit(context.Background(), BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(40)})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	assert.True(t, decimal.NewFromInt(30).Equal(env.ReloadUser(t, u.ID()).Balance()))
	payments, err := env.Payments.ListByUserID(context.Background(), u.ID())
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestBalance_Validation(t *testing.T) {
	env := testutil.NewEnv(t)
	env.CreateUser(t, "alice", decimal.Zero, time.Now())
	uc := newBalanceUseCase(env, nil)
	ctx := context.Background()

	_, err := uc.Credit(ctx, BalanceCommand{Username: "alice", Amount: decimal.Zero})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Credit(ctx, BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(5), Currency: "EUR"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Credit(ctx, BalanceCommand{Username: "nobody", Amount: decimal.NewFromInt(5)})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestHistoryAndEarnings(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.CreateUser(t, "alice", decimal.Zero, time.Now())
	uc := newBalanceUseCase(env, nil)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, amount := range []int64{100, 50} {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		uc.now = func() time.Time { return at }
		_, err := uc.Credit(ctx, BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(amount)})
		require.NoError(t, err)
	}
	uc.now = func() time.Time { return base.Add(48 * time.Hour) }
	_, err := uc.Debit(ctx, BalanceCommand{Username: "alice", Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)

	history, err := NewPaymentHistoryUseCase(env.Users, env.Payments, env.Logger).Execute(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].IsDebit())
	assert.Equal(t, u.ID(), history[0].UserID())

	report, err := NewEarningsUseCase(env.Payments, env.Logger).Execute(ctx, base, base.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count)
	assert.True(t, decimal.NewFromInt(150).Equal(report.Credits))
	assert.True(t, decimal.NewFromInt(30).Equal(report.Refunds))
	assert.True(t, decimal.NewFromInt(120).Equal(report.Totals[shared.CurrencyINR]))

	// The upper bound is exclusive.
	report, err = NewEarningsUseCase(env.Payments, env.Logger).Execute(ctx, base, base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count)

	_, err = NewEarningsUseCase(env.Payments, env.Logger).Execute(ctx, base, base)
	assert.True(t, apperrors.IsValidationError(err))
}
