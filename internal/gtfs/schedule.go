package gtfs

import (
	"sort"
	"time"
)

// Agency is an operator from agency.txt.
type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
}

// Stop is a boarding point or a station grouping child stops.
type Stop struct {
	ID       string
	Code     string
	Name     string
	Lat      float64
	Lon      float64
	Zone     string
	ParentID string
}

// IsChild reports whether the stop belongs to a parent station.
func (s Stop) IsChild() bool {
	return s.ParentID != ""
}

// Route is a route from routes.txt. Code is the short public route number
// used as the external key.
type Route struct {
	ID       string
	AgencyID string
	Code     string
	LongName string
	Type     int
}

// Trip is one scheduled run of a route.
type Trip struct {
	ID        string
	RouteID   string
	Headsign  string
	Direction int
	ServiceID string
	PatternID string
}

// StopTime is a trip's scheduled call at a stop. Time is the departure time
// (or the arrival time when no departure is published) as zero-padded
// "HH:MM:SS"; hours run past 23 for service after midnight. It is blank
// when the feed publishes no usable time.
type StopTime struct {
	TripID    string
	StopID    string
	Sequence  int
	Arrival   string
	Time      string
	Timepoint bool
}

// PatternStop is one entry of a stop pattern.
type PatternStop struct {
	StopID    string
	Sequence  int
	Timepoint bool
}

// StopVisit is a trip calling at a stop, as indexed for departures.
type StopVisit struct {
	TripID   string
	Sequence int
	Time     string
	// Last marks the final call of the trip, where nobody boards.
	Last bool
}

// Schedule is an immutable, fully indexed static dataset. Readers share a
// Schedule freely; a reload builds a new one and swaps it in.
type Schedule struct {
	Meta     FeedMeta
	LoadedAt time.Time

	agencies   []Agency
	agencyIDs  []string
	stops      []Stop
	stopIndex  map[string]int
	stopByName map[string]string
	children   map[string][]string

	routes        []Route
	routeByCode   map[string]int
	routeCodeByID map[string]string

	trips        []Trip
	tripIndex    map[string]int
	tripsByRoute map[string][]string
	stopTimes    map[string][]StopTime
	visits       map[string][]StopVisit

	patterns map[string][]PatternStop
	services map[string][]time.Time
}

func emptySchedule() *Schedule {
	return &Schedule{
		stopIndex:     map[string]int{},
		stopByName:    map[string]string{},
		children:      map[string][]string{},
		routeByCode:   map[string]int{},
		routeCodeByID: map[string]string{},
		tripIndex:     map[string]int{},
		tripsByRoute:  map[string][]string{},
		stopTimes:     map[string][]StopTime{},
		visits:        map[string][]StopVisit{},
		patterns:      map[string][]PatternStop{},
		services:      map[string][]time.Time{},
	}
}

// Loaded reports whether the schedule holds a dataset.
func (s *Schedule) Loaded() bool {
	return !s.LoadedAt.IsZero()
}

func (s *Schedule) Agencies() []Agency {
	return s.agencies
}

// AgencyIDs lists the agency ids, used to decode trip ids.
func (s *Schedule) AgencyIDs() []string {
	return s.agencyIDs
}

// Timezone returns the first agency's timezone, or UTC when unknown.
func (s *Schedule) Timezone() *time.Location {
	for _, a := range s.agencies {
		if a.Timezone == "" {
			continue
		}
		if loc, err := time.LoadLocation(a.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func (s *Schedule) Stops() []Stop {
	return s.stops
}

func (s *Schedule) Stop(id string) (Stop, bool) {
	i, ok := s.stopIndex[id]
	if !ok {
		return Stop{}, false
	}
	return s.stops[i], true
}

// StopIDByName looks a stop up by its exact name. When several stops share
// a name the last one loaded wins.
func (s *Schedule) StopIDByName(name string) (string, bool) {
	id, ok := s.stopByName[name]
	return id, ok
}

// ChildStops returns the ids of stops whose parent station is id.
func (s *Schedule) ChildStops(id string) []string {
	return s.children[id]
}

func (s *Schedule) Routes() []Route {
	return s.routes
}

func (s *Schedule) RouteByCode(code string) (Route, bool) {
	i, ok := s.routeByCode[code]
	if !ok {
		return Route{}, false
	}
	return s.routes[i], true
}

func (s *Schedule) RouteCodeForID(routeID string) (string, bool) {
	code, ok := s.routeCodeByID[routeID]
	return code, ok
}

func (s *Schedule) Trip(id string) (Trip, bool) {
	i, ok := s.tripIndex[id]
	if !ok {
		return Trip{}, false
	}
	return s.trips[i], true
}

// TripsForRoute returns the route's trips in trips.txt order.
func (s *Schedule) TripsForRoute(routeID string) []Trip {
	ids := s.tripsByRoute[routeID]
	out := make([]Trip, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.trips[s.tripIndex[id]])
	}
	return out
}

// StopTimes returns a trip's calls ordered by sequence.
func (s *Schedule) StopTimes(tripID string) []StopTime {
	return s.stopTimes[tripID]
}

// FirstDeparture returns the first published time of a trip.
func (s *Schedule) FirstDeparture(tripID string) (string, bool) {
	for _, st := range s.stopTimes[tripID] {
		if st.Time != "" {
			return st.Time, true
		}
	}
	return "", false
}

// VisitsAt returns every trip call at a stop, across all service days.
func (s *Schedule) VisitsAt(stopID string) []StopVisit {
	return s.visits[stopID]
}

func (s *Schedule) StopPattern(id string) []PatternStop {
	return s.patterns[id]
}

// ServiceDates returns the sorted dates a service runs on.
func (s *Schedule) ServiceDates(serviceID string) []time.Time {
	return s.services[serviceID]
}

// ServiceRunsOn reports whether a service runs on the calendar day of date.
func (s *Schedule) ServiceRunsOn(serviceID string, date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dates := s.services[serviceID]
	i := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(day) })
	return i < len(dates) && dates[i].Equal(day)
}

// Counts summarises the size of the dataset for logs and health checks.
type Counts struct {
	Agencies  int `json:"agencies"`
	Stops     int `json:"stops"`
	Routes    int `json:"routes"`
	Trips     int `json:"trips"`
	StopTimes int `json:"stopTimes"`
	Patterns  int `json:"patterns"`
	Services  int `json:"services"`
}

func (s *Schedule) Counts() Counts {
	stopTimes := 0
	for _, st := range s.stopTimes {
		stopTimes += len(st)
	}
	return Counts{
		Agencies:  len(s.agencies),
		Stops:     len(s.stops),
		Routes:    len(s.routes),
		Trips:     len(s.trips),
		StopTimes: stopTimes,
		Patterns:  len(s.patterns),
		Services:  len(s.services),
	}
}
