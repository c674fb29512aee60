package calendar

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekdaysBetween returns every Monday to Friday date in [from, to].
func weekdaysBetween(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d)
		}
	}
	return out
}

func without(dates []time.Time, drop time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !d.Equal(drop) {
			out = append(out, d)
		}
	}
	return out
}

func TestAnalyzeEmpty(t *testing.T) {
	assert.Nil(t, Analyze(nil))
	assert.Nil(t, Analyze([]time.Time{}))
}

func TestAnalyzeWeekdayServiceWithMissingDate(t *testing.T) {
	// 4 March 2024 is a Monday.
	dates := without(weekdaysBetween(day(2024, 3, 4), day(2024, 3, 29)), day(2024, 3, 8))

	summary := Analyze(dates)
	require.NotNil(t, summary)

	assert.Equal(t, "Mon-Fri", summary.Pattern)
	assert.Equal(t, [7]bool{true, true, true, true, true, false, false}, summary.Typical)
	assert.Equal(t, []time.Time{day(2024, 3, 8)}, summary.Missing)
	assert.Equal(t, []string{"Fri 8 Mar"}, summary.MissingText)
	assert.Empty(t, summary.Extra)
	assert.Equal(t, day(2024, 3, 4), summary.First)
	assert.Equal(t, day(2024, 3, 29), summary.Last)
	assert.Equal(t, 19, summary.Days)
	assert.Equal(t, "Mon-Fri except Fri 8 Mar", summary.Describe())
}

func TestAnalyzeExtraDate(t *testing.T) {
	dates := weekdaysBetween(day(2024, 3, 4), day(2024, 3, 29))
	dates = append(dates, day(2024, 3, 16))

	summary := Analyze(dates)
	require.NotNil(t, summary)

	assert.Equal(t, "Mon-Fri", summary.Pattern)
	assert.Empty(t, summary.Missing)
	assert.Equal(t, []string{"Sat 16 Mar"}, summary.ExtraText)
	assert.Equal(t, "Mon-Fri; also Sat 16 Mar", summary.Describe())
	assert.True(t, summary.Runs(day(2024, 3, 16)))
	assert.False(t, summary.Runs(day(2024, 3, 17)))
	assert.True(t, summary.Runs(day(2024, 3, 18)))
	assert.False(t, summary.Runs(day(2024, 4, 1)))
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	dates := without(weekdaysBetween(day(2024, 1, 1), day(2024, 2, 29)), day(2024, 1, 22))
	dates = append(dates, day(2024, 2, 3), day(2024, 2, 4))

	first := Analyze(dates)
	second := Analyze(dates)
	assert.Equal(t, first, second)
}

func TestAnalyzeIgnoresOrderAndDuplicates(t *testing.T) {
	dates := without(weekdaysBetween(day(2024, 3, 4), day(2024, 3, 29)), day(2024, 3, 8))

	shuffled := append([]time.Time{}, dates...)
	shuffled = append(shuffled, dates[3], dates[7])
	r := rand.New(rand.NewSource(42))
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.Equal(t, Analyze(dates), Analyze(shuffled))
}

func TestAnalyzeNormalizesTimeOfDay(t *testing.T) {
	nz := time.FixedZone("NZDT", 13*3600)
	summary := Analyze([]time.Time{
		time.Date(2024, 3, 9, 23, 30, 0, 0, nz),
		time.Date(2024, 3, 9, 6, 0, 0, 0, nz),
	})
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.Days)
	assert.Equal(t, "Sat", summary.Pattern)
	assert.Equal(t, day(2024, 3, 9), summary.First)
}

func TestAnalyzeWeekendService(t *testing.T) {
	var dates []time.Time
	for d := day(2024, 3, 2); d.Before(day(2024, 3, 31)); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d, d.AddDate(0, 0, 1))
	}

	summary := Analyze(dates)
	require.NotNil(t, summary)
	assert.Equal(t, "Sat, Sun", summary.Pattern)
	assert.Empty(t, summary.Missing)
	assert.Empty(t, summary.Extra)
}

func TestAnalyzeHalfObservedIsTypical(t *testing.T) {
	// Mondays 4, 11, 18, 25 March; service runs on two of them.
	dates := []time.Time{day(2024, 3, 4), day(2024, 3, 18), day(2024, 3, 25)}
	dates = without(dates, day(2024, 3, 18))

	summary := Analyze(dates)
	require.NotNil(t, summary)
	assert.Equal(t, "Mon", summary.Pattern)
	assert.Equal(t, []string{"Mon 11 Mar", "Mon 18 Mar"}, summary.MissingText)
}

func TestPatternString(t *testing.T) {
	tests := []struct {
		name     string
		typical  [7]bool
		expected string
	}{
		{"none", [7]bool{}, ""},
		{"every day", [7]bool{true, true, true, true, true, true, true}, "Mon-Sun"},
		{"weekdays", [7]bool{true, true, true, true, true}, "Mon-Fri"},
		{"pair", [7]bool{false, false, false, false, true, true}, "Fri, Sat"},
		{"split runs", [7]bool{true, true, true, false, true, false, true}, "Mon-Wed, Fri, Sun"},
		{"single", [7]bool{false, false, true}, "Wed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PatternString(tt.typical))
		})
	}
}

func TestDescribeNil(t *testing.T) {
	var summary *PatternSummary
	assert.Equal(t, "", summary.Describe())
	assert.False(t, summary.Runs(day(2024, 1, 1)))
}
