// Package views turns the static schedule and the live feeds into the
// records served to clients.
package views

import (
	"errors"
	"log/slog"
	"time"

	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/logging"
	"rti.metlink.nz/internal/models"
)

// ErrNotFound is returned for unknown stops, routes, trips and vehicles.
var ErrNotFound = errors.New("not found")

// LiveFeeds hands out the latest realtime snapshots.
type LiveFeeds interface {
	VehiclePositions() *gtfs.VehicleSnapshot
	TripUpdates() *gtfs.TripUpdateSnapshot
	Alerts() *gtfs.AlertSnapshot
}

// Views answers queries against whatever snapshots are current when the
// query starts. A query never sees two different schedules.
type Views struct {
	schedule gtfs.ScheduleSource
	live     LiveFeeds
	logger   *slog.Logger
}

func New(schedule gtfs.ScheduleSource, live LiveFeeds, logger *slog.Logger) *Views {
	return &Views{
		schedule: schedule,
		live:     live,
		logger:   logging.Component(logger, "views"),
	}
}

func (v *Views) loaded() (*gtfs.Schedule, error) {
	s := v.schedule.Snapshot()
	if !s.Loaded() {
		return nil, gtfs.ErrNotLoaded
	}
	return s, nil
}

// stopModel renders a stop, leaving everything but the id blank when the
// schedule does not know it.
func stopModel(s *gtfs.Schedule, id string) models.Stop {
	stop, ok := s.Stop(id)
	if !ok {
		return models.Stop{ID: id}
	}
	return models.Stop{
		ID:     stop.ID,
		Code:   stop.Code,
		Name:   stop.Name,
		Lat:    stop.Lat,
		Lon:    stop.Lon,
		Zone:   stop.Zone,
		Parent: stop.ParentID,
	}
}

func routeModel(route gtfs.Route) models.Route {
	return models.Route{
		ID:       route.ID,
		AgencyID: route.AgencyID,
		Code:     route.Code,
		LongName: route.LongName,
		Type:     route.Type,
	}
}

// alertModel reports the alert's window at now.
func alertModel(a gtfs.Alert, now time.Time) models.Alert {
	window := a.Window(now)
	return models.Alert{
		ID:          a.ID,
		Header:      a.Header,
		Description: a.Description,
		Cause:       a.Cause,
		Effect:      a.Effect,
		Severity:    a.Severity,
		Start:       window.Start,
		End:         window.End,
		Routes:      nonNil(a.RouteCodes),
		Stops:       nonNil(a.StopIDs),
		Trips:       nonNil(a.TripIDs),
	}
}

// activeAlerts converts the alerts active at now, skipping ids already
// present in seen.
func activeAlerts(alerts []gtfs.Alert, now time.Time, seen map[string]bool) []models.Alert {
	out := []models.Alert{}
	for _, a := range alerts {
		if !a.ActiveAt(now) || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, alertModel(a, now))
	}
	return out
}

// Alerts returns every alert active at now.
func (v *Views) Alerts(now time.Time) []models.Alert {
	return activeAlerts(v.live.Alerts().Alerts, now, map[string]bool{})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// routeCode finds the public route code for a live record, falling back to
// the trip's route and then to the raw route id.
func routeCode(s *gtfs.Schedule, routeID, tripID string) string {
	if code, ok := s.RouteCodeForID(routeID); ok {
		return code
	}
	if trip, ok := s.Trip(tripID); ok {
		if code, ok := s.RouteCodeForID(trip.RouteID); ok {
			return code
		}
	}
	return routeID
}

// delayStatus classifies a signed delay in seconds.
func delayStatus(delay int) string {
	switch {
	case delay > -onTimeSeconds && delay < onTimeSeconds:
		return models.StatusOnTime
	case delay < 0:
		return models.StatusEarly
	default:
		return models.StatusDelayed
	}
}
