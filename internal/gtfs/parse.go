package gtfs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jamespfennell/gtfs"
	"rti.metlink.nz/internal/tripid"
	"rti.metlink.nz/internal/utils"
)

// ParseStats reports rows that were skipped while indexing an archive.
type ParseStats struct {
	TripsWithoutRoute    int
	StopTimesWithoutTrip int
	InvalidTimes         int
	HeuristicServiceIDs  int
}

var requiredTables = []string{
	"agency.txt",
	"stops.txt",
	"routes.txt",
	"trips.txt",
	"stop_times.txt",
	"calendar_dates.txt",
	"stop_patterns.txt",
	"stop_pattern_trips.txt",
}

// standardTables are read by gtfs.ParseStatic. Trips and stop times are not:
// the library drops trips whose service_id names no calendar entry, and
// service ids here are decoded from the trip id.
var standardTables = []string{"agency.txt", "stops.txt", "routes.txt", "calendar_dates.txt"}

// headerOnly stands in for the tables gtfs.ParseStatic requires but does not
// get to index.
var headerOnly = map[string]string{
	"trips.txt":      "route_id,service_id,trip_id\n",
	"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n",
}

// ParseArchive reads a zipped static dataset into a fully indexed Schedule.
// All eight tables must be present and non-empty.
func ParseArchive(data []byte) (*Schedule, ParseStats, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("%w: opening archive: %v", ErrMalformedFeed, err)
	}

	files := make(map[string]*zip.File, len(requiredTables))
	for _, zipFile := range reader.File {
		// Some publishers nest the tables inside a folder.
		name := path.Base(zipFile.Name)
		if _, found := files[name]; !found {
			files[name] = zipFile
		}
	}
	for _, name := range requiredTables {
		zipFile, found := files[name]
		if !found {
			return nil, ParseStats{}, fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		if zipFile.UncompressedSize64 == 0 {
			return nil, ParseStats{}, fmt.Errorf("%w: %s", ErrEmptyTable, name)
		}
	}

	static, err := parseStandardTables(files)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	t := &tables{}
	for name, destination := range t.fileMap() {
		if err := unmarshalZipFile(files[name], destination); err != nil {
			return nil, ParseStats{}, fmt.Errorf("%w: parsing %s: %v", ErrMalformedFeed, name, err)
		}
	}

	counts := t.rowCounts()
	counts["agency.txt"] = len(static.Agencies)
	counts["stops.txt"] = len(static.Stops)
	counts["routes.txt"] = len(static.Routes)
	counts["calendar_dates.txt"] = len(static.Services)
	for _, name := range requiredTables {
		if counts[name] == 0 {
			return nil, ParseStats{}, fmt.Errorf("%w: %s", ErrEmptyTable, name)
		}
	}

	schedule, stats := buildSchedule(static, t)
	return schedule, stats, nil
}

// parseStandardTables repacks the standard tables at the archive root, without
// byte order marks, and parses them with gtfs.ParseStatic.
func parseStandardTables(files map[string]*zip.File) (*gtfs.Static, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range standardTables {
		if err := copyTable(w, name, files[name]); err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}
	for name, header := range headerOnly {
		dst, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(dst, header); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return gtfs.ParseStatic(buf.Bytes(), gtfs.ParseStaticOptions{})
}

func copyTable(w *zip.Writer, name string, zipFile *zip.File) error {
	src, err := zipFile.Open()
	if err != nil {
		return err
	}
	defer src.Close() // nolint

	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, skipBOM(src))
	return err
}

func unmarshalZipFile(zipFile *zip.File, destination interface{}) error {
	f, err := zipFile.Open()
	if err != nil {
		return err
	}
	defer f.Close() // nolint

	return gocsv.Unmarshal(skipBOM(f), destination)
}

// buildSchedule derives every index from the parsed tables.
func buildSchedule(static *gtfs.Static, t *tables) (*Schedule, ParseStats) {
	s := emptySchedule()
	var stats ParseStats

	for _, a := range static.Agencies {
		s.agencies = append(s.agencies, Agency{ID: a.Id, Name: a.Name, URL: a.Url, Timezone: a.Timezone})
		if a.Id != "" {
			s.agencyIDs = append(s.agencyIDs, a.Id)
		}
	}

	for _, row := range static.Stops {
		if row.Id == "" {
			continue
		}
		stop := Stop{
			ID:   row.Id,
			Code: row.Code,
			Name: row.Name,
			Zone: row.ZoneId,
		}
		if row.Latitude != nil && row.Longitude != nil {
			stop.Lat, stop.Lon = *row.Latitude, *row.Longitude
		}
		if row.Parent != nil {
			stop.ParentID = row.Parent.Id
		}
		if i, dup := s.stopIndex[stop.ID]; dup {
			s.stops[i] = stop
		} else {
			s.stopIndex[stop.ID] = len(s.stops)
			s.stops = append(s.stops, stop)
		}
		s.stopByName[stop.Name] = stop.ID
	}
	for _, stop := range s.stops {
		if stop.ParentID != "" {
			s.children[stop.ParentID] = append(s.children[stop.ParentID], stop.ID)
		}
	}

	for _, row := range static.Routes {
		code := row.ShortName
		if code == "" {
			code = row.Id
		}
		route := Route{
			ID:       row.Id,
			Code:     code,
			LongName: row.LongName,
			Type:     int(row.Type),
		}
		if row.Agency != nil {
			route.AgencyID = row.Agency.Id
		}
		s.routeByCode[code] = len(s.routes)
		s.routeCodeByID[route.ID] = code
		s.routes = append(s.routes, route)
	}

	patternByTrip := make(map[string]string, len(t.StopPatternTrips))
	for _, row := range t.StopPatternTrips {
		patternByTrip[row.TripID] = row.PatternID
	}

	for _, row := range t.Trips {
		if _, ok := s.routeCodeByID[row.RouteID]; !ok {
			stats.TripsWithoutRoute++
			continue
		}
		serviceID, ok := tripid.ServiceIDFromTripID(row.TripID, s.agencyIDs)
		if ok {
			stats.HeuristicServiceIDs++
		} else {
			serviceID = row.ServiceID
		}
		trip := Trip{
			ID:        row.TripID,
			RouteID:   row.RouteID,
			Headsign:  row.Headsign,
			Direction: int(row.DirectionID),
			ServiceID: serviceID,
			PatternID: patternByTrip[row.TripID],
		}
		if i, dup := s.tripIndex[trip.ID]; dup {
			s.trips[i] = trip
			continue
		}
		s.tripsByRoute[trip.RouteID] = append(s.tripsByRoute[trip.RouteID], trip.ID)
		s.tripIndex[trip.ID] = len(s.trips)
		s.trips = append(s.trips, trip)
	}

	for _, row := range t.StopTimes {
		if _, ok := s.tripIndex[row.TripID]; !ok {
			stats.StopTimesWithoutTrip++
			continue
		}
		arrival, arrivalErr := normalizeClock(row.ArrivalTime)
		departure, departureErr := normalizeClock(row.DepartureTime)
		if arrivalErr != nil || departureErr != nil {
			stats.InvalidTimes++
		}
		if departure == "" {
			departure = arrival
		}
		s.stopTimes[row.TripID] = append(s.stopTimes[row.TripID], StopTime{
			TripID:    row.TripID,
			StopID:    row.StopID,
			Sequence:  int(row.StopSequence),
			Arrival:   arrival,
			Time:      departure,
			Timepoint: bool(row.Timepoint),
		})
	}
	for tripID, times := range s.stopTimes {
		sort.SliceStable(times, func(i, j int) bool { return times[i].Sequence < times[j].Sequence })
		for i, st := range times {
			s.visits[st.StopID] = append(s.visits[st.StopID], StopVisit{
				TripID:   tripID,
				Sequence: st.Sequence,
				Time:     st.Time,
				Last:     i == len(times)-1,
			})
		}
	}
	for _, visits := range s.visits {
		sort.Slice(visits, func(i, j int) bool {
			if visits[i].Time != visits[j].Time {
				return visits[i].Time < visits[j].Time
			}
			if visits[i].TripID != visits[j].TripID {
				return visits[i].TripID < visits[j].TripID
			}
			return visits[i].Sequence < visits[j].Sequence
		})
	}

	for _, row := range t.StopPatterns {
		s.patterns[row.PatternID] = append(s.patterns[row.PatternID], PatternStop{
			StopID:    row.StopID,
			Sequence:  int(row.StopSequence),
			Timepoint: bool(row.Timepoint),
		})
	}
	for _, stops := range s.patterns {
		sort.SliceStable(stops, func(i, j int) bool { return stops[i].Sequence < stops[j].Sequence })
	}

	// Only added dates are modeled; removals are ignored.
	for _, service := range static.Services {
		seen := make(map[time.Time]bool, len(service.AddedDates))
		for _, added := range service.AddedDates {
			day := time.Date(added.Year(), added.Month(), added.Day(), 0, 0, 0, 0, time.UTC)
			if seen[day] {
				continue
			}
			seen[day] = true
			s.services[service.Id] = append(s.services[service.Id], day)
		}
	}
	for _, dates := range s.services {
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}

	return s, stats
}

// normalizeClock pads a clock value for lexical comparison. Blank input
// stays blank.
func normalizeClock(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	normalized, err := utils.NormalizeClock(value)
	if err != nil {
		return "", err
	}
	return normalized, nil
}
