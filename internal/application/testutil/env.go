// Package testutil wires the application layer to an in-memory SQLite ledger
// and recording collaborators for use-case tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/infrastructure/repository"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// AdminChatID is the admin chat used by test dispatchers.
const AdminChatID int64 = 4242

// Env holds real gorm repositories over a private in-memory database.
type Env struct {
	DB        *gorm.DB
	Users     user.Repository
	Rentals   rental.Repository
	Payments  payment.Repository
	Links     telegram.Repository
	TxManager *db.TransactionManager
	Notifier  *RecordingNotifier
	Logger    logger.Interface
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	log := logger.NewNopLogger()
	return &Env{
		DB:        gdb,
		Users:     repository.NewUserRepository(gdb, log),
		Rentals:   repository.NewRentalRepository(gdb, log),
		Payments:  repository.NewPaymentRepository(gdb, log),
		Links:     repository.NewTelegramLinkRepository(gdb, log),
		TxManager: db.NewTransactionManager(gdb),
		Notifier:  &RecordingNotifier{},
		Logger:    log,
	}
}

// CreateUser stores a user with the given balance whose deduction clock is at lastDeduction.
func (e *Env) CreateUser(t *testing.T, name string, balance decimal.Decimal, lastDeduction time.Time) *user.User {
	t.Helper()
	u, err := user.NewUser(name, "brightotter1234", lastDeduction)
	require.NoError(t, err)
	if balance.IsPositive() {
		require.NoError(t, u.Credit(balance))
	}
	require.NoError(t, e.Users.Create(context.Background(), u))
	return u
}

// CreateRental stores an active INR rental starting at start.
func (e *Env) CreateRental(t *testing.T, userID uint, start time.Time, duration time.Duration, rate decimal.Decimal) *rental.Rental {
	t.Helper()
	r, err := rental.NewRental(userID, start, int64(duration/time.Second), decimal.Zero, shared.CurrencyINR, rate)
	require.NoError(t, err)
	require.NoError(t, e.Rentals.Create(context.Background(), r))
	return r
}

// LinkChat links userID to a chat with the given first name.
func (e *Env) LinkChat(t *testing.T, userID uint, chatID int64, firstName string) *telegram.Link {
	t.Helper()
	l, err := telegram.NewLink(chatID, userID, "", firstName, "")
	require.NoError(t, err)
	require.NoError(t, e.Links.Create(context.Background(), l))
	return l
}

func (e *Env) ReloadUser(t *testing.T, id uint) *user.User {
	t.Helper()
	u, err := e.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (e *Env) ReloadRental(t *testing.T, id uint) *rental.Rental {
	t.Helper()
	r, err := e.Rentals.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}
