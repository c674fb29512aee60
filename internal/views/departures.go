package views

import (
	"fmt"
	"sort"
	"time"

	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/utils"
)

const (
	DefaultDepartureLimit = 20
	// onTimeSeconds is how far from schedule a trip may run and still be
	// on time.
	onTimeSeconds = 60
	// liveWindow bounds which run of a trip a live update is applied to.
	liveWindow = 12 * time.Hour
	// cancelled is the GTFS-realtime schedule relationship of a cancelled
	// trip.
	cancelled = "CANCELED"
)

// NextDepartures lists the next departures from a stop, including its
// platforms when the stop is a parent station. Trips of yesterday's service
// day are considered too, for their times past midnight. Live delays move
// the estimate; estimates are in minutes after the trip updates feed was
// generated.
func (v *Views) NextDepartures(stopID string, now time.Time, limit int) (models.StopDepartures, error) {
	s, err := v.loaded()
	if err != nil {
		return models.StopDepartures{}, err
	}
	if _, ok := s.Stop(stopID); !ok {
		return models.StopDepartures{}, fmt.Errorf("stop %q: %w", stopID, ErrNotFound)
	}
	if limit <= 0 {
		limit = DefaultDepartureLimit
	}

	stopIDs := append([]string{stopID}, s.ChildStops(stopID)...)
	updates := v.live.TripUpdates()
	vehicles := v.live.VehiclePositions()
	today := utils.ServiceDay(now.In(s.Timezone()))

	departures := []models.Departure{}
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		for _, id := range stopIDs {
			for _, visit := range s.VisitsAt(id) {
				if visit.Last || visit.Time == "" {
					continue
				}
				trip, ok := s.Trip(visit.TripID)
				if !ok || !s.ServiceRunsOn(trip.ServiceID, day) {
					continue
				}
				seconds, err := utils.ParseClock(visit.Time)
				if err != nil {
					continue
				}

				dep := departure(s, trip, id, day, seconds, now, updates, vehicles)
				if effectiveTime(dep).Before(now) {
					continue
				}
				departures = append(departures, dep)
			}
		}
	}

	sort.SliceStable(departures, func(i, j int) bool {
		a, b := effectiveTime(departures[i]), effectiveTime(departures[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return departures[i].TripID < departures[j].TripID
	})
	if len(departures) > limit {
		departures = departures[:limit]
	}

	seen := map[string]bool{}
	alerts := []models.Alert{}
	for _, id := range stopIDs {
		alerts = append(alerts, activeAlerts(v.live.Alerts().ForStop(id), now, seen)...)
	}

	return models.StopDepartures{
		Stop:         stopModel(s, stopID),
		LastModified: updates.Reference(),
		Departures:   departures,
		Alerts:       alerts,
	}, nil
}

func departure(s *gtfs.Schedule, trip gtfs.Trip, stopID string, day time.Time, seconds int, now time.Time,
	updates *gtfs.TripUpdateSnapshot, vehicles *gtfs.VehicleSnapshot) models.Departure {
	scheduled := day.Add(time.Duration(seconds) * time.Second)
	code, _ := s.RouteCodeForID(trip.RouteID)
	route, _ := s.RouteByCode(code)

	dep := models.Departure{
		TripID:      trip.ID,
		StopID:      stopID,
		RouteCode:   route.Code,
		RouteName:   route.LongName,
		Destination: destination(s, trip),
		Direction:   trip.Direction,
		ServiceDate: day.Format(utils.DisplayDateLayout),
		Scheduled:   utils.ShortClock(seconds),
		ScheduledAt: scheduled,
	}

	live := scheduled.Sub(now).Abs() < liveWindow
	if update, ok := updates.ByTrip[trip.ID]; ok && live {
		dep.VehicleID = update.VehicleID
		switch {
		case update.ScheduleRelationship == cancelled:
			dep.Status = models.StatusCancelled
		case update.Delay != nil:
			delay := *update.Delay
			estimated := scheduled.Add(time.Duration(delay) * time.Second)
			minutes := int(estimated.Sub(updates.Reference()) / time.Minute)
			if minutes < 0 {
				minutes = 0
			}
			dep.Delay = &delay
			dep.EstimatedAt = &estimated
			dep.Minutes = &minutes
			dep.Estimate = fmt.Sprintf("%d mins", minutes)
			dep.Status = delayStatus(delay)
		}
	}
	if vehicle, ok := vehicles.ByTrip[trip.ID]; ok && live && dep.VehicleID == "" {
		dep.VehicleID = vehicle.VehicleID
	}
	dep.StatusText = models.StatusText(dep.Status)
	return dep
}

func effectiveTime(dep models.Departure) time.Time {
	if dep.EstimatedAt != nil {
		return *dep.EstimatedAt
	}
	return dep.ScheduledAt
}

// destination is the name of the trip's last stop, or its headsign when
// that stop is unknown.
func destination(s *gtfs.Schedule, trip gtfs.Trip) string {
	times := s.StopTimes(trip.ID)
	if len(times) > 0 {
		if stop, ok := s.Stop(times[len(times)-1].StopID); ok && stop.Name != "" {
			return stop.Name
		}
	}
	return trip.Headsign
}
