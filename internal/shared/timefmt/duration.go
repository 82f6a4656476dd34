// Package timefmt parses operator-entered durations and renders durations and
// timestamps for chat and admin output.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

var unitSeconds = map[rune]int64{
	'd': secondsPerDay,
	'h': secondsPerHour,
	'm': secondsPerMinute,
	's': 1,
}

// ParseDuration converts text such as "2d5h30m" into seconds.
//
// Digit runs are multiplied by the unit letter that follows them. Any other
// character ends the current digit run without contributing to the total, so
// "3x2h" is two hours and "42" is zero. A duration that does not fit in an
// int64 count of seconds parses as zero.
func ParseDuration(text string) int64 {
	var (
		total   int64
		current strings.Builder
	)
	for _, r := range strings.ToLower(text) {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if mult, ok := unitSeconds[r]; ok && current.Len() > 0 {
			n, err := strconv.ParseInt(current.String(), 10, 64)
			if err == nil {
				if n > math.MaxInt64/mult {
					return 0
				}
				n *= mult
				if total > math.MaxInt64-n {
					return 0
				}
				total += n
			}
		}
		current.Reset()
	}
	return total
}

// FormatUnits renders seconds in the compact form accepted by ParseDuration.
func FormatUnits(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	var b strings.Builder
	for _, u := range []struct {
		letter byte
		size   int64
	}{{'d', secondsPerDay}, {'h', secondsPerHour}, {'m', secondsPerMinute}, {'s', 1}} {
		if n := seconds / u.size; n > 0 {
			b.WriteString(strconv.FormatInt(n, 10))
			b.WriteByte(u.letter)
			seconds %= u.size
		}
	}
	return b.String()
}

// Humanize renders a remaining duration as "3 days, 4 hours, 5 minutes".
// Zero components are omitted; non-positive input is "Expired".
func Humanize(seconds int64) string {
	if seconds <= 0 {
		return "Expired"
	}
	parts := make([]string, 0, 4)
	for _, u := range []struct {
		name string
		size int64
	}{{"day", secondsPerDay}, {"hour", secondsPerHour}, {"minute", secondsPerMinute}, {"second", 1}} {
		n := seconds / u.size
		if n == 0 {
			continue
		}
		seconds %= u.size
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", u.name))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}
	return strings.Join(parts, ", ")
}

// HumanizeDuration is Humanize for a time.Duration, truncated to whole seconds.
func HumanizeDuration(d time.Duration) string {
	return Humanize(int64(d / time.Second))
}

// DaySuffix returns the English ordinal suffix for a day of month.
func DaySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatTimestamp renders epoch seconds as "5th March 2025, 02:30 PM IST" in loc.
func FormatTimestamp(epoch int64, loc *time.Location) string {
	t := time.Unix(epoch, 0).In(loc)
	return fmt.Sprintf("%d%s %s", t.Day(), DaySuffix(t.Day()), t.Format("January 2006, 03:04 PM MST"))
}
