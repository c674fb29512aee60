package models

import "time"

// Alert is a service alert. Fields the feed left out are omitted.
type Alert struct {
	ID          string     `json:"id"`
	Header      *string    `json:"header,omitempty"`
	Description *string    `json:"description,omitempty"`
	Cause       *string    `json:"cause,omitempty"`
	Effect      *string    `json:"effect,omitempty"`
	Severity    *string    `json:"severity,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Routes      []string   `json:"routes"`
	Stops       []string   `json:"stops"`
	Trips       []string   `json:"trips"`
}
