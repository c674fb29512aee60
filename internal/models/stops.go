package models

// Stop is a stop or station. Unknown stops render with only the id set.
type Stop struct {
	ID     string  `json:"id"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Zone   string  `json:"zone"`
	Parent string  `json:"parent,omitempty"`
}

// NearbyStop is a stop near another stop.
type NearbyStop struct {
	Stop     Stop    `json:"stop"`
	Distance string  `json:"distance"`
	Meters   float64 `json:"meters"`
	// Heading is the compass direction from the nearby stop towards the
	// stop that was searched from.
	Heading string `json:"heading"`
}
