package gtfs

import (
	"time"
)

// VehiclePosition is the latest reported position of the vehicle running a
// trip. Optional feed fields are pointers and stay nil when absent.
type VehiclePosition struct {
	TripID    string
	RouteID   string
	StartTime string
	Direction *int
	Lat       float64
	Lon       float64
	Bearing   *float64
	VehicleID string
	Timestamp time.Time
}

// TripUpdate is the latest delay report for a trip. Delay is signed seconds;
// negative means early.
type TripUpdate struct {
	TripID               string
	RouteID              string
	StartTime            string
	Delay                *int
	ScheduleRelationship string
	VehicleID            string
	Timestamp            time.Time
}

func (v VehiclePosition) vehicleKey() string    { return v.VehicleID }
func (v VehiclePosition) observedAt() time.Time { return v.Timestamp }
func (u TripUpdate) vehicleKey() string         { return u.VehicleID }
func (u TripUpdate) observedAt() time.Time      { return u.Timestamp }

// VehicleSnapshot is one completed vehicle-positions refresh, keyed by trip.
type VehicleSnapshot struct {
	Header    time.Time
	FetchedAt time.Time
	ByTrip    map[string]VehiclePosition
	Keepovers int
}

// TripUpdateSnapshot is one completed trip-updates refresh, keyed by trip.
type TripUpdateSnapshot struct {
	Header    time.Time
	FetchedAt time.Time
	ByTrip    map[string]TripUpdate
	Keepovers int
}

// Reference is the time estimates are shown relative to: the feed header,
// or the fetch time when the header had none.
func (s *TripUpdateSnapshot) Reference() time.Time {
	return snapshotTime(s.Header, s.FetchedAt)
}

func (s *VehicleSnapshot) Reference() time.Time {
	return snapshotTime(s.Header, s.FetchedAt)
}

func snapshotTime(header, fetchedAt time.Time) time.Time {
	if header.IsZero() {
		return fetchedAt
	}
	return header
}

// Alert is a service alert with its affected entities resolved against the
// static schedule.
type Alert struct {
	ID          string
	Header      *string
	Description *string
	Cause       *string
	Effect      *string
	Severity    *string
	RouteCodes  []string
	StopIDs     []string
	TripIDs     []string

	// Periods are the active windows in feed order. No periods means the
	// alert is always active.
	Periods []Period
}

// Period is one active window of an alert. Missing bounds are open-ended.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && t.After(*p.End) {
		return false
	}
	return true
}

// ActiveAt reports whether t falls inside any of the alert's periods.
func (a Alert) ActiveAt(t time.Time) bool {
	if len(a.Periods) == 0 {
		return true
	}
	for _, p := range a.Periods {
		if p.Contains(t) {
			return true
		}
	}
	return false
}

// Window returns the period covering t, else the next one to start, else
// the last one. It is the zero Period when the alert has none.
func (a Alert) Window(t time.Time) Period {
	var next *Period
	for i, p := range a.Periods {
		if p.Contains(t) {
			return p
		}
		if p.Start != nil && p.Start.After(t) && (next == nil || p.Start.Before(*next.Start)) {
			next = &a.Periods[i]
		}
	}
	if next != nil {
		return *next
	}
	if len(a.Periods) > 0 {
		return a.Periods[len(a.Periods)-1]
	}
	return Period{}
}

// AlertSnapshot is one completed alerts refresh.
type AlertSnapshot struct {
	Header    time.Time
	FetchedAt time.Time
	Alerts    []Alert

	byRoute map[string][]int
	byStop  map[string][]int
	byTrip  map[string][]int
}

// NewAlertSnapshot indexes alerts by the routes, stops and trips they affect.
func NewAlertSnapshot(header, fetchedAt time.Time, alerts []Alert) *AlertSnapshot {
	snap := &AlertSnapshot{
		Header:    header,
		FetchedAt: fetchedAt,
		Alerts:    alerts,
		byRoute:   map[string][]int{},
		byStop:    map[string][]int{},
		byTrip:    map[string][]int{},
	}
	for i, a := range alerts {
		for _, code := range a.RouteCodes {
			snap.byRoute[code] = append(snap.byRoute[code], i)
		}
		for _, id := range a.StopIDs {
			snap.byStop[id] = append(snap.byStop[id], i)
		}
		for _, id := range a.TripIDs {
			snap.byTrip[id] = append(snap.byTrip[id], i)
		}
	}
	return snap
}

func (s *AlertSnapshot) pick(indices []int) []Alert {
	out := make([]Alert, 0, len(indices))
	for _, i := range indices {
		out = append(out, s.Alerts[i])
	}
	return out
}

func (s *AlertSnapshot) ForRoute(code string) []Alert { return s.pick(s.byRoute[code]) }
func (s *AlertSnapshot) ForStop(id string) []Alert    { return s.pick(s.byStop[id]) }
func (s *AlertSnapshot) ForTrip(id string) []Alert    { return s.pick(s.byTrip[id]) }
