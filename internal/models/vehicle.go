package models

import "time"

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// VehicleProximity places a live vehicle relative to the nearest stop of
// its trip.
type VehicleProximity struct {
	TripID    string    `json:"tripId"`
	RouteCode string    `json:"route"`
	VehicleID string    `json:"vehicleId"`
	Location  Location  `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	// Bearing is the reported compass bearing as an 8-point heading.
	Bearing string `json:"bearing,omitempty"`

	NearestStop *Stop   `json:"nearestStop,omitempty"`
	Sequence    int     `json:"sequence,omitempty"`
	Distance    string  `json:"distance,omitempty"`
	Meters      float64 `json:"meters,omitempty"`
	// Heading is the direction from the nearest stop to the vehicle.
	Heading string `json:"heading,omitempty"`

	Delay  *int   `json:"delay,omitempty"`
	Status string `json:"status,omitempty"`
}
