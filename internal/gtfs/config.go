package gtfs

import (
	"strings"
	"time"

	"rti.metlink.nz/internal/appconf"
)

const (
	defaultStaticSchedule      = "@every 6h"
	defaultStaticTimeout       = 2 * time.Minute
	defaultRealtimeTimeout     = 15 * time.Second
	defaultAlertsInterval      = 5 * time.Minute
	defaultVehiclesInterval    = 30 * time.Second
	defaultTripUpdatesInterval = 30 * time.Second
	defaultForcedAlertsEvery   = 30 * time.Second
)

type Config struct {
	// GtfsURL is the static archive, either an http(s) URL or a local path.
	GtfsURL string
	// FeedInfoURL publishes the validity window of the current archive.
	FeedInfoURL string
	// CachePath is where a downloaded archive is kept between restarts.
	CachePath string
	// StaticSchedule is the cron spec for the static freshness check.
	StaticSchedule string
	StaticTimeout  time.Duration

	AlertsURL               string
	TripUpdatesURL          string
	VehiclePositionsURL     string
	RealTimeAuthHeaderKey   string
	RealTimeAuthHeaderValue string

	AlertsInterval      time.Duration
	VehiclesInterval    time.Duration
	TripUpdatesInterval time.Duration
	RealtimeTimeout     time.Duration
	// ForcedAlertsEvery is the minimum gap between forced alert refreshes.
	ForcedAlertsEvery time.Duration

	Env     appconf.Environment
	Verbose bool
}

func (config Config) withDefaults() Config {
	if config.StaticSchedule == "" {
		config.StaticSchedule = defaultStaticSchedule
	}
	if config.StaticTimeout <= 0 {
		config.StaticTimeout = defaultStaticTimeout
	}
	if config.RealtimeTimeout <= 0 {
		config.RealtimeTimeout = defaultRealtimeTimeout
	}
	if config.AlertsInterval <= 0 {
		config.AlertsInterval = defaultAlertsInterval
	}
	if config.VehiclesInterval <= 0 {
		config.VehiclesInterval = defaultVehiclesInterval
	}
	if config.TripUpdatesInterval <= 0 {
		config.TripUpdatesInterval = defaultTripUpdatesInterval
	}
	if config.ForcedAlertsEvery <= 0 {
		config.ForcedAlertsEvery = defaultForcedAlertsEvery
	}
	return config
}

func (config Config) isLocalFile() bool {
	return !strings.HasPrefix(config.GtfsURL, "http://") && !strings.HasPrefix(config.GtfsURL, "https://")
}

func (config Config) realTimeDataEnabled() bool {
	return config.AlertsURL != "" || config.TripUpdatesURL != "" || config.VehiclePositionsURL != ""
}

// authHeaders returns the upstream API key header, when configured.
func (config Config) authHeaders() map[string]string {
	headers := map[string]string{}
	if config.RealTimeAuthHeaderKey != "" && config.RealTimeAuthHeaderValue != "" {
		headers[config.RealTimeAuthHeaderKey] = config.RealTimeAuthHeaderValue
	}
	return headers
}
