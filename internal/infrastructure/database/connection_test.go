package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/shared/config"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "bot.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("bot.db"))
	assert.Equal(t, "file:bot.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:bot.db?mode=rwc"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "x.db?_pragma=journal_mode(WAL)", sqliteDSN("x.db?_pragma=journal_mode(WAL)"))
}

func TestDialectorFor_RejectsUnknownDriver(t *testing.T) {
	_, err := dialectorFor(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInit_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leasebot.db")
	require.NoError(t, Init(&config.DatabaseConfig{Driver: "sqlite", DSN: path}))
	t.Cleanup(func() { _ = Close() })

	require.NotNil(t, Get())
	var one int
	require.NoError(t, Get().Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
