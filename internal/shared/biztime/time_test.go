package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests run with the default Asia/Kolkata location (UTC+05:30).

func TestStartOfDayUTC(t *testing.T) {
	// 2026-03-01 20:00 UTC is 2026-03-02 01:30 IST.
	got := StartOfDayUTC(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), got)
}

func TestDailyAtUTC(t *testing.T) {
	got := DailyAtUTC(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC), 9, 0)
	assert.Equal(t, time.Date(2026, 3, 1, 3, 30, 0, 0, time.UTC), got)
}

func TestLatestDailyAtUTC(t *testing.T) {
	// 07:30 IST, before 09:00: yesterday's slot.
	now := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 28, 3, 30, 0, 0, time.UTC), LatestDailyAtUTC(now, 9, 0))

	// exactly at the slot counts as today.
	at := time.Date(2026, 3, 1, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, at, LatestDailyAtUTC(at, 9, 0))
}

func TestParseDateInBizTimezone(t *testing.T) {
	got, err := ParseDateInBizTimezone("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 18, 30, 0, 0, time.UTC), got)

	_, err = ParseDateInBizTimezone("01/03/2026")
	assert.Error(t, err)
}

func TestFormatInBizTimezone(t *testing.T) {
	ts := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02 00:00", FormatInBizTimezone(ts, "2006-01-02 15:04"))
}
