package views

import (
	"time"

	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/utils"
)

// Health reports the loaded dataset and the state of each live feed.
func (v *Views) Health(now time.Time) models.Health {
	s := v.schedule.Snapshot()
	health := models.Health{
		Status:       "ok",
		Loaded:       s.Loaded(),
		Counts:       map[string]int{},
		LiveFeeds:    map[string]models.Feed{},
		ReadableTime: now.In(s.Timezone()).Format("Monday 2 January 2006 15:04"),
	}
	if !s.Loaded() {
		health.Status = "loading"
	} else {
		loadedAt := s.LoadedAt
		health.LoadedAt = &loadedAt
		counts := s.Counts()
		health.Counts = map[string]int{
			"agencies":  counts.Agencies,
			"stops":     counts.Stops,
			"routes":    counts.Routes,
			"trips":     counts.Trips,
			"stopTimes": counts.StopTimes,
			"patterns":  counts.Patterns,
			"services":  counts.Services,
		}
	}
	if !s.Meta.StartDate.IsZero() {
		health.ValidFrom = s.Meta.StartDate.Format(utils.DisplayDateLayout)
	}
	if !s.Meta.EndDate.IsZero() {
		health.ValidTo = s.Meta.EndDate.Format(utils.DisplayDateLayout)
	}

	vehicles := v.live.VehiclePositions()
	updates := v.live.TripUpdates()
	alerts := v.live.Alerts()
	health.LiveFeeds["vehicle_positions"] = feed(vehicles.Header, vehicles.FetchedAt, len(vehicles.ByTrip), vehicles.Keepovers)
	health.LiveFeeds["trip_updates"] = feed(updates.Header, updates.FetchedAt, len(updates.ByTrip), updates.Keepovers)
	health.LiveFeeds["alerts"] = feed(alerts.Header, alerts.FetchedAt, len(alerts.Alerts), 0)
	return health
}

func feed(header, fetchedAt time.Time, entries, keepovers int) models.Feed {
	f := models.Feed{Entries: entries, Keepovers: keepovers}
	if !header.IsZero() {
		f.Header = &header
	}
	if !fetchedAt.IsZero() {
		f.FetchedAt = &fetchedAt
	}
	return f
}
