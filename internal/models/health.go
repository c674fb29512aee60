package models

import "time"

// Health reports what the engine has loaded.
type Health struct {
	Status       string          `json:"status"`
	Loaded       bool            `json:"loaded"`
	LoadedAt     *time.Time      `json:"loadedAt,omitempty"`
	ValidFrom    string          `json:"validFrom,omitempty"`
	ValidTo      string          `json:"validTo,omitempty"`
	Counts       map[string]int  `json:"counts"`
	LiveFeeds    map[string]Feed `json:"liveFeeds"`
	ReadableTime string          `json:"readableTime"`
}

// Feed is the state of one live feed.
type Feed struct {
	Header    *time.Time `json:"header,omitempty"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
	Entries   int        `json:"entries"`
	Keepovers int        `json:"keepovers"`
}
