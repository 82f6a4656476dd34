package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	"github.com/orris-inc/leasebot/internal/application/testutil"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
)

// sweepTime is 10:00 business time, after the 06:00 deduction hour.
func sweepTime() time.Time {
	return time.Date(2025, time.March, 11, 10, 0, 0, 0, biztime.Location()).UTC()
}

func newSweep(env *testutil.Env) *DeductionSweepUseCase {
	dispatcher := notifyuc.NewDispatcher(env.Notifier, env.Links, testutil.AdminChatID, env.Logger)
	return NewDeductionSweepUseCase(env.Users, env.Rentals, env.TxManager, dispatcher, 6, 0, env.Logger)
}

func TestDeductionSweep_ChargesElapsedDays(t *testing.T) {
	env := testutil.NewEnv(t)
	now := sweepTime()
	u := env.CreateUser(t, "alice", decimal.NewFromInt(100), now.Add(-48*time.Hour))
	r := env.CreateRental(t, u.ID(), now.Add(-48*time.Hour), 30*24*time.Hour, decimal.NewFromInt(40))

	result, err := newSweep(env).Execute(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Charged)
	assert.True(t, decimal.NewFromInt(80).Equal(result.Total))

	got := env.ReloadUser(t, u.ID())
	assert.True(t, decimal.NewFromInt(20).Equal(got.Balance()), "balance %s", got.Balance())
	wantAnchor := time.Date(2025, time.March, 11, 6, 0, 0, 0, biztime.Location()).Unix()
	assert.Equal(t, wantAnchor, got.LastDeductionTime())

	assert.Equal(t, rental.StateActive, env.ReloadRental(t, r.ID()).State())
	assert.Empty(t, env.Notifier.Sent())
}

func TestDeductionSweep_IdempotentWithinDay(t *testing.T) {
	env := testutil.NewEnv(t)
	now := sweepTime()
	u := env.CreateUser(t, "alice", decimal.NewFromInt(100), now.Add(-48*time.Hour))
	env.CreateRental(t, u.ID(), now.Add(-48*time.Hour), 30*24*time.Hour, decimal.NewFromInt(40))

	sweep := newSweep(env)
	_, err := sweep.Execute(context.Background(), now)
	require.NoError(t, err)

	result, err := sweep.Execute(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Charged)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, decimal.NewFromInt(20).Equal(env.ReloadUser(t, u.ID()).Balance()))
}

func TestDeductionSweep_LapsesOnInsufficientBalance(t *testing.T) {
	env := testutil.NewEnv(t)
	now := sweepTime()
	u := env.CreateUser(t, "bob", decimal.NewFromInt(30), now.Add(-25*time.Hour))
	r := env.CreateRental(t, u.ID(), now.Add(-25*time.Hour), 30*24*time.Hour, decimal.NewFromInt(40))
	env.LinkChat(t, u.ID(), 777, "Bob")

	result, err := newSweep(env).Execute(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Lapsed)
	assert.Equal(t, 0, result.Charged)

	got := env.ReloadUser(t, u.ID())
	assert.True(t, decimal.NewFromInt(30).Equal(got.Balance()))
	assert.Equal(t, u.LastDeductionTime(), got.LastDeductionTime())

	lapsed := env.ReloadRental(t, r.ID())
	assert.False(t, lapsed.IsActive())
	assert.False(t, lapsed.IsExpired())
	assert.Equal(t, rental.StateLapsed, lapsed.State())

	require.Len(t, env.Notifier.To(777), 1)
	assert.Contains(t, env.Notifier.To(777)[0].Text, "Bob")
	admin := env.Notifier.To(testutil.AdminChatID)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0].Text, "bob")
	assert.Len(t, admin[0].Buttons, 2)

	// A lapsed rental is no longer billable.
	result, err = newSweep(env).Execute(context.Background(), now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Lapsed+result.Charged)
}

func TestDeductionSweep_SkipsNotYetDue(t *testing.T) {
	env := testutil.NewEnv(t)
	now := sweepTime()
	u := env.CreateUser(t, "carol", decimal.NewFromInt(100), now.Add(-23*time.Hour))
	env.CreateRental(t, u.ID(), now.Add(-23*time.Hour), 30*24*time.Hour, decimal.NewFromInt(40))

	result, err := newSweep(env).Execute(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, decimal.NewFromInt(100).Equal(env.ReloadUser(t, u.ID()).Balance()))
}

func TestDeductionSweep_IgnoresExpiredAndZombieRentals(t *testing.T) {
	env := testutil.NewEnv(t)
	now := sweepTime()
	ctx := context.Background()

	expiredOwner := env.CreateUser(t, "dave", decimal.NewFromInt(100), now.Add(-72*time.Hour))
	expired := env.CreateRental(t, expiredOwner.ID(), now.Add(-72*time.Hour), time.Hour, decimal.NewFromInt(10))
	require.NoError(t, expired.Expire())
	require.NoError(t, env.Rentals.Update(ctx, expired))

	zombieOwner := env.CreateUser(t, "erin", decimal.NewFromInt(100), now.Add(-72*time.Hour))
	zombie := env.CreateRental(t, zombieOwner.ID(), now.Add(-72*time.Hour), 30*24*time.Hour, decimal.NewFromInt(10))
	zombie.MarkZombie()
	require.NoError(t, env.Rentals.Update(ctx, zombie))

	result, err := newSweep(env).Execute(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, result.Charged+result.Lapsed+result.Skipped)
	assert.True(t, decimal.NewFromInt(100).Equal(env.ReloadUser(t, expiredOwner.ID()).Balance()))
	assert.True(t, decimal.NewFromInt(100).Equal(env.ReloadUser(t, zombieOwner.ID()).Balance()))
}
