package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SecondsPerDay is the length of a service day used when wrapping
	// post-midnight clock times.
	SecondsPerDay = 24 * 60 * 60

	// ServiceDateLayout is the compact date format used by static tables.
	ServiceDateLayout = "20060102"
	// DisplayDateLayout is the date format accepted and produced by the API.
	DisplayDateLayout = "2006-01-02"
)

var errInvalidClock = errors.New("invalid clock time, use HH:MM[:SS]")

// ParseClock converts an "H:MM" or "HH:MM:SS" time of day to seconds since
// midnight. Hours of 24 and above are kept, so "25:10:00" is 90600.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errInvalidClock
	}

	var fields [3]int
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return 0, errInvalidClock
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, errInvalidClock
		}
		fields[i] = n
	}

	if fields[1] > 59 || fields[2] > 59 {
		return 0, errInvalidClock
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// FormatClock renders seconds since midnight as zero-padded "HH:MM:SS".
// Values past midnight keep counting hours, e.g. "25:10:00".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// NormalizeClock re-renders a clock string as zero-padded "HH:MM:SS" so
// times compare correctly as strings.
func NormalizeClock(value string) (string, error) {
	seconds, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return FormatClock(seconds), nil
}

// ShortClock renders seconds since midnight as "HH:MM" on a 24 hour clock,
// folding post-midnight service times back onto the next day.
func ShortClock(seconds int) string {
	seconds = WrapDay(seconds)
	return fmt.Sprintf("%02d:%02d", seconds/3600, seconds%3600/60)
}

// WrapDay folds a seconds-since-midnight value into [0, SecondsPerDay).
func WrapDay(seconds int) int {
	seconds %= SecondsPerDay
	if seconds < 0 {
		seconds += SecondsPerDay
	}
	return seconds
}

// ServiceDay returns midnight of t's calendar day in t's location.
func ServiceDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SecondsSinceMidnight returns how far t is into its calendar day.
func SecondsSinceMidnight(t time.Time) int {
	return int(t.Sub(ServiceDay(t)) / time.Second)
}
