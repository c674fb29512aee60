package gtfs

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

const gtfsDateFormat = "20060102"

func init() {
	// Rows with fewer columns than the header are common in the wild.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		return r
	})
}

// CSVInt is an integer column where blank means zero.
type CSVInt int

// UnmarshalCSV parses the column value.
func (i *CSVInt) UnmarshalCSV(csv string) error {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		*i = 0
		return nil
	}

	val, err := strconv.Atoi(csv)
	if err != nil {
		return err
	}

	*i = CSVInt(val)
	return nil
}

// CSVTimepoint is the timepoint column. Only an explicit 0 marks an
// approximate time; blank means the time is exact.
type CSVTimepoint bool

// UnmarshalCSV parses the column value.
func (b *CSVTimepoint) UnmarshalCSV(csv string) error {
	switch strings.TrimSpace(csv) {
	case "", "1":
		*b = true
	case "0":
		*b = false
	default:
		return errors.New("invalid timepoint value " + strconv.Quote(csv))
	}
	return nil
}

type tripRow struct {
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	TripID      string `csv:"trip_id"`
	Headsign    string `csv:"trip_headsign"`
	DirectionID CSVInt `csv:"direction_id"`
}

type stopTimeRow struct {
	TripID        string       `csv:"trip_id"`
	ArrivalTime   string       `csv:"arrival_time"`
	DepartureTime string       `csv:"departure_time"`
	StopID        string       `csv:"stop_id"`
	StopSequence  CSVInt       `csv:"stop_sequence"`
	Timepoint     CSVTimepoint `csv:"timepoint"`
}

type stopPatternRow struct {
	PatternID    string       `csv:"stop_pattern_id"`
	StopID       string       `csv:"stop_id"`
	StopSequence CSVInt       `csv:"stop_sequence"`
	Timepoint    CSVTimepoint `csv:"timepoint"`
}

type stopPatternTripRow struct {
	PatternID string `csv:"stop_pattern_id"`
	TripID    string `csv:"trip_id"`
}

// tables holds the raw rows of the tables indexed with gocsv.
type tables struct {
	Trips            []tripRow
	StopTimes        []stopTimeRow
	StopPatterns     []stopPatternRow
	StopPatternTrips []stopPatternTripRow
}

// fileMap maps each gocsv table to its destination slice.
func (t *tables) fileMap() map[string]interface{} {
	return map[string]interface{}{
		"trips.txt":              &t.Trips,
		"stop_times.txt":         &t.StopTimes,
		"stop_patterns.txt":      &t.StopPatterns,
		"stop_pattern_trips.txt": &t.StopPatternTrips,
	}
}

func (t *tables) rowCounts() map[string]int {
	return map[string]int{
		"trips.txt":              len(t.Trips),
		"stop_times.txt":         len(t.StopTimes),
		"stop_patterns.txt":      len(t.StopPatterns),
		"stop_pattern_trips.txt": len(t.StopPatternTrips),
	}
}

// skipBOM drops a leading UTF-8 byte order mark so the first header column
// matches its tag.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
