// Package app holds the dependencies shared by the HTTP handlers and the
// command line.
package app

import (
	"log/slog"

	"rti.metlink.nz/internal/appconf"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/views"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	GtfsConfig  gtfs.Config
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Views       *views.Views
}

// New wires the views onto a running manager.
func New(config appconf.Config, manager *gtfs.Manager, logger *slog.Logger) *Application {
	return &Application{
		Config:      config,
		GtfsConfig:  GtfsConfigFrom(config),
		Logger:      logger,
		GtfsManager: manager,
		Views:       views.New(manager.Static, manager.Live, logger),
	}
}

// GtfsConfigFrom maps the service configuration onto the schedule engine's.
func GtfsConfigFrom(config appconf.Config) gtfs.Config {
	return gtfs.Config{
		GtfsURL:                 config.Static.URL,
		FeedInfoURL:             config.Static.FeedInfoURL,
		CachePath:               config.Static.CachePath,
		StaticSchedule:          config.Static.Schedule,
		StaticTimeout:           config.Static.Timeout,
		AlertsURL:               config.Realtime.AlertsURL,
		TripUpdatesURL:          config.Realtime.TripUpdatesURL,
		VehiclePositionsURL:     config.Realtime.VehiclePositionsURL,
		RealTimeAuthHeaderKey:   config.Realtime.APIKeyHeader,
		RealTimeAuthHeaderValue: config.Realtime.APIKey,
		AlertsInterval:          config.Realtime.AlertsInterval,
		VehiclesInterval:        config.Realtime.VehiclesInterval,
		TripUpdatesInterval:     config.Realtime.TripUpdatesInterval,
		RealtimeTimeout:         config.Realtime.Timeout,
		ForcedAlertsEvery:       config.Realtime.ForcedAlertsEvery,
		Env:                     config.Env,
		Verbose:                 config.Log.Verbose,
	}
}
