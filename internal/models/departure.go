package models

import "time"

// Departure statuses, as published by the upstream departures board.
const (
	StatusOnTime    = "onTime"
	StatusEarly     = "early"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
)

var statusText = map[string]string{
	StatusOnTime:  "On time",
	StatusEarly:   "Early",
	StatusDelayed: "Late",
}

// StatusText returns the display label of a status. Statuses without a
// label are shown as they are.
func StatusText(status string) string {
	if text, ok := statusText[status]; ok {
		return text
	}
	return status
}

// Departure is one upcoming trip at a stop.
type Departure struct {
	TripID      string `json:"tripId"`
	StopID      string `json:"stopId"`
	RouteCode   string `json:"route"`
	RouteName   string `json:"routeName"`
	Destination string `json:"destination"`
	Direction   int    `json:"direction"`
	ServiceDate string `json:"serviceDate"`

	// Scheduled is the "HH:MM" scheduled departure.
	Scheduled   string     `json:"scheduled"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	EstimatedAt *time.Time `json:"estimatedAt,omitempty"`
	Delay       *int       `json:"delay,omitempty"`
	// Estimate is the estimated wait, such as "4 mins", or "" without
	// live data.
	Estimate   string `json:"estimate"`
	Minutes    *int   `json:"minutes,omitempty"`
	Status     string `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	VehicleID  string `json:"vehicleId,omitempty"`
}

// StopDepartures is a stop's departure board.
type StopDepartures struct {
	Stop         Stop        `json:"stop"`
	LastModified time.Time   `json:"lastModified"`
	Departures   []Departure `json:"departures"`
	Alerts       []Alert     `json:"alerts"`
}
