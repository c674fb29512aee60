package models

type Route struct {
	ID       string `json:"id"`
	AgencyID string `json:"agencyId"`
	Code     string `json:"code"`
	LongName string `json:"longName"`
	Type     int    `json:"type"`
}

// RouteStop is one stop of a route's stop sequence. Time is set only when
// the sequence comes from a single trip.
type RouteStop struct {
	Stop      Stop   `json:"stop"`
	Sequence  int    `json:"sequence"`
	Timepoint bool   `json:"timepoint"`
	Time      string `json:"time,omitempty"`
}

// RouteStops is the ordered stop list of a route in one direction.
type RouteStops struct {
	Route     Route       `json:"route"`
	Direction int         `json:"direction"`
	PatternID string      `json:"patternId,omitempty"`
	TripID    string      `json:"tripId,omitempty"`
	Stops     []RouteStop `json:"stops"`
}
