// Package biztime provides utilities for business timezone calculations.
// All storage uses UTC epoch seconds. The business timezone is only used for
// rendering timestamps and for anchoring the daily deduction hour.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Kolkata"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Kolkata.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// Location returns the business timezone location, initializing the default on first use.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns 00:00 of t's business day, converted to UTC.
func StartOfDayUTC(t time.Time) time.Time {
	bizTime := t.In(Location())
	startOfDay := time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), 0, 0, 0, 0, Location())
	return startOfDay.UTC()
}

// DailyAtUTC returns hour:minute of t's business day, converted to UTC.
func DailyAtUTC(t time.Time, hour, minute int) time.Time {
	bizTime := t.In(Location())
	at := time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), hour, minute, 0, 0, Location())
	return at.UTC()
}

// LatestDailyAtUTC returns the most recent business-timezone hour:minute that is not after t.
func LatestDailyAtUTC(t time.Time, hour, minute int) time.Time {
	at := DailyAtUTC(t, hour, minute)
	if at.After(t) {
		bizTime := t.In(Location())
		prev := time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day()-1, hour, minute, 0, 0, Location())
		return prev.UTC()
	}
	return at
}

// FormatInBizTimezone formats a UTC time as a string in business timezone.
func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// ParseDateInBizTimezone parses a date string (YYYY-MM-DD) as business timezone midnight,
// then returns the UTC equivalent.
func ParseDateInBizTimezone(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", dateStr, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", dateStr, err)
	}
	return t.UTC(), nil
}
