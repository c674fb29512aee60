package models

import "time"

// ServicePattern is the inferred weekly pattern of one service id.
type ServicePattern struct {
	ServiceID   string   `json:"serviceId"`
	First       string   `json:"first"`
	Last        string   `json:"last"`
	Days        int      `json:"days"`
	Pattern     string   `json:"pattern"`
	Missing     []string `json:"missing"`
	Extra       []string `json:"extra"`
	Description string   `json:"description"`
}

// TimetableTrip is one column of a timetable.
type TimetableTrip struct {
	TripID    string `json:"tripId"`
	ServiceID string `json:"serviceId"`
	Headsign  string `json:"headsign"`
	VehicleID string `json:"vehicleId,omitempty"`
	Delay     *int   `json:"delay,omitempty"`
}

// TimetableRow is one stop visit across all columns. Times are "HH:MM",
// blank where the trip does not call.
type TimetableRow struct {
	Stop      Stop     `json:"stop"`
	Pin       int      `json:"pin"`
	Timepoint bool     `json:"timepoint"`
	Times     []string `json:"times"`
}

// Timetable is a route's timetable grid for one direction and day.
type Timetable struct {
	Route     Route            `json:"route"`
	Direction int              `json:"direction"`
	Date      time.Time        `json:"date"`
	Trips     []TimetableTrip  `json:"trips"`
	Rows      []TimetableRow   `json:"rows"`
	Services  []ServicePattern `json:"services"`
}
