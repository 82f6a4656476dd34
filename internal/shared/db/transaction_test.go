package db

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type counter struct {
	ID    uint `gorm:"primaryKey"`
	Value int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&counter{}))
	return gdb
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	gdb := newTestDB(t)
	tm := NewTransactionManager(gdb)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, GetTxFromContext(ctx, gdb).Create(&counter{Value: 1}).Error)
		return errors.New("abort")
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, gdb.Model(&counter{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	gdb := newTestDB(t)
	tm := NewTransactionManager(gdb)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		outer := GetTxFromContext(ctx, gdb)
		return tm.RunInTransaction(ctx, func(inner context.Context) error {
			assert.Same(t, outer, GetTxFromContext(inner, gdb))
			return outer.Create(&counter{Value: 2}).Error
		})
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, gdb.Model(&counter{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
