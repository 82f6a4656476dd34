package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "days", input: "7d", want: 7 * 86400},
		{name: "mixed units", input: "2h30m", want: 2*3600 + 30*60},
		{name: "all units", input: "1d2h3m4s", want: 86400 + 7200 + 180 + 4},
		{name: "upper case", input: "1D12H", want: 86400 + 12*3600},
		{name: "unknown unit discards run", input: "3x2h", want: 7200},
		{name: "no unit", input: "42", want: 0},
		{name: "empty", input: "", want: 0},
		{name: "unit without digits", input: "dh", want: 0},
		{name: "space breaks run", input: "5 d", want: 0},
		{name: "repeated unit accumulates", input: "1d1d", want: 2 * 86400},
		{name: "run overflows with unit", input: "300000000000000d", want: 0},
		{name: "run overflows int64", input: "99999999999999999999s", want: 0},
		{name: "largest whole days", input: "106751991167300d", want: 106751991167300 * 86400},
		{name: "sum overflows", input: "106751991167300d106751991167300d", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input))
		})
	}
}

func TestParseDuration_RoundTripsFormatUnits(t *testing.T) {
	for _, seconds := range []int64{1, 59, 60, 61, 3599, 3600, 86399, 86400, 90061, 30 * 86400} {
		assert.Equal(t, seconds, ParseDuration(FormatUnits(seconds)), "seconds=%d", seconds)
	}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Expired", Humanize(0))
	assert.Equal(t, "Expired", Humanize(-5))
	assert.Equal(t, "1 second", Humanize(1))
	assert.Equal(t, "2 minutes", Humanize(120))
	assert.Equal(t, "1 day, 1 minute", Humanize(86400+60))
	assert.Equal(t, "3 days, 4 hours, 5 minutes, 6 seconds", Humanize(3*86400+4*3600+5*60+6))
	assert.Equal(t, "1 hour", HumanizeDuration(time.Hour+500*time.Millisecond))
}

func TestDaySuffix(t *testing.T) {
	cases := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 23: "rd", 31: "st"}
	for day, want := range cases {
		assert.Equal(t, want, DaySuffix(day), "day=%d", day)
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	epoch := time.Date(2025, time.March, 11, 14, 30, 0, 0, loc).Unix()
	assert.Equal(t, "11th March 2025, 02:30 PM IST", FormatTimestamp(epoch, loc))

	epoch = time.Date(2024, time.December, 22, 9, 5, 0, 0, loc).Unix()
	assert.Equal(t, "22nd December 2024, 09:05 AM IST", FormatTimestamp(epoch, loc))
}
