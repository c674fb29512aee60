// Package calendar infers a human readable weekly pattern from the set of
// dates a service runs on.
//
// The analysis is a heuristic: a weekday is typical when the service runs on
// at least half of its occurrences within the observed range. One-off
// exceptions such as public holidays are reported as missing or extra dates
// rather than breaking the pattern, at the cost of misreading services that
// genuinely run on irregular weeks.
package calendar

import (
	"sort"
	"strings"
	"time"
)

// DateTextLayout is how exception dates are rendered.
const DateTextLayout = "Mon 2 Jan"

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// PatternSummary describes the weekly shape of a set of service dates.
type PatternSummary struct {
	First time.Time
	Last  time.Time
	// Days is the number of distinct service dates.
	Days int

	// Typical is indexed Monday first.
	Typical [7]bool
	Pattern string

	Missing     []time.Time
	Extra       []time.Time
	MissingText []string
	ExtraText   []string
}

// Analyze summarises dates into a weekly pattern with exceptions. It returns
// nil when dates is empty. Input order and duplicates do not matter; every
// date is reduced to its calendar day.
func Analyze(dates []time.Time) *PatternSummary {
	days := normalize(dates)
	if len(days) == 0 {
		return nil
	}

	first, last := days[0], days[len(days)-1]
	present := make(map[time.Time]bool, len(days))
	var observed [7]int
	for _, d := range days {
		present[d] = true
		observed[weekdayIndex(d)]++
	}

	var expected [7]int
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		expected[weekdayIndex(d)]++
	}

	summary := &PatternSummary{First: first, Last: last, Days: len(days)}
	for i := range summary.Typical {
		summary.Typical[i] = expected[i] > 0 && observed[i]*2 >= expected[i]
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		typical := summary.Typical[weekdayIndex(d)]
		switch {
		case typical && !present[d]:
			summary.Missing = append(summary.Missing, d)
			summary.MissingText = append(summary.MissingText, d.Format(DateTextLayout))
		case !typical && present[d]:
			summary.Extra = append(summary.Extra, d)
			summary.ExtraText = append(summary.ExtraText, d.Format(DateTextLayout))
		}
	}

	summary.Pattern = PatternString(summary.Typical)
	return summary
}

// PatternString renders a Monday-first weekday mask. Runs of three or more
// consecutive days collapse to a range such as "Mon-Fri"; other days are
// listed individually.
func PatternString(typical [7]bool) string {
	var parts []string
	for i := 0; i < len(typical); {
		if !typical[i] {
			i++
			continue
		}
		j := i
		for j+1 < len(typical) && typical[j+1] {
			j++
		}
		if j-i >= 2 {
			parts = append(parts, weekdayNames[i]+"-"+weekdayNames[j])
		} else {
			for k := i; k <= j; k++ {
				parts = append(parts, weekdayNames[k])
			}
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

// Describe renders the summary as a single line, for example
// "Mon-Fri except Fri 8 Mar; also Sat 16 Mar".
func (s *PatternSummary) Describe() string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.Pattern)
	if len(s.MissingText) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("except ")
		b.WriteString(strings.Join(s.MissingText, ", "))
	}
	if len(s.ExtraText) > 0 {
		if b.Len() > 0 {
			b.WriteString("; also ")
		} else {
			b.WriteString("only ")
		}
		b.WriteString(strings.Join(s.ExtraText, ", "))
	}
	return b.String()
}

// Runs reports whether the service is scheduled on the calendar day of d
// according to the inferred pattern and its exceptions.
func (s *PatternSummary) Runs(d time.Time) bool {
	if s == nil {
		return false
	}
	day := dateOf(d)
	if day.Before(s.First) || day.After(s.Last) {
		return false
	}
	for _, m := range s.Missing {
		if m.Equal(day) {
			return false
		}
	}
	for _, e := range s.Extra {
		if e.Equal(day) {
			return true
		}
	}
	return s.Typical[weekdayIndex(day)]
}

func normalize(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := dateOf(d)
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// dateOf keeps the calendar day of t in its own location, expressed as UTC
// midnight so dates compare by value.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
