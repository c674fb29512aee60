package views

import (
	"time"

	"rti.metlink.nz/internal/grid"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/utils"
)

// Timetable builds the grid of a route's trips in one direction on the
// calendar day of date. Columns carry the live delay and vehicle of each
// trip when known.
func (v *Views) Timetable(code string, direction int, date time.Time) (models.Timetable, error) {
	s, err := v.loaded()
	if err != nil {
		return models.Timetable{}, err
	}
	route, err := v.route(s, code)
	if err != nil {
		return models.Timetable{}, err
	}

	var (
		inDirection []gtfs.Trip
		running     []grid.TripStops
		hint        []string
	)
	for _, trip := range s.TripsForRoute(route.ID) {
		if trip.Direction != direction {
			continue
		}
		inDirection = append(inDirection, trip)
		if !s.ServiceRunsOn(trip.ServiceID, date) {
			continue
		}
		hint = append(hint, trip.ID)
		running = append(running, tripStops(s, trip.ID))
	}

	timetable := models.Timetable{
		Route:     routeModel(route),
		Direction: direction,
		Date:      utils.ServiceDay(date),
		Trips:     []models.TimetableTrip{},
		Rows:      []models.TimetableRow{},
		Services:  servicePatterns(s, inDirection),
	}

	g := grid.Build(running, hint, stopLookup(s))
	if g == nil {
		return timetable, nil
	}

	updates := v.live.TripUpdates()
	vehicles := v.live.VehiclePositions()
	for _, id := range g.Trips {
		trip, _ := s.Trip(id)
		column := models.TimetableTrip{TripID: id, ServiceID: trip.ServiceID, Headsign: trip.Headsign}
		if update, ok := updates.ByTrip[id]; ok {
			column.Delay = update.Delay
			column.VehicleID = update.VehicleID
		}
		if vehicle, ok := vehicles.ByTrip[id]; ok && column.VehicleID == "" {
			column.VehicleID = vehicle.VehicleID
		}
		timetable.Trips = append(timetable.Trips, column)
	}

	for _, r := range g.Rows {
		row := models.TimetableRow{
			Stop:      models.Stop{ID: r.StopID},
			Pin:       r.Pin,
			Timepoint: r.Timepoint,
			Times:     make([]string, len(r.Times)),
		}
		if r.Known {
			row.Stop = stopModel(s, r.StopID)
		}
		for i, t := range r.Times {
			if seconds, err := utils.ParseClock(t); err == nil {
				row.Times[i] = utils.ShortClock(seconds)
			}
		}
		timetable.Rows = append(timetable.Rows, row)
	}
	return timetable, nil
}

func tripStops(s *gtfs.Schedule, tripID string) grid.TripStops {
	times := s.StopTimes(tripID)
	visits := make([]grid.Visit, 0, len(times))
	for _, st := range times {
		visits = append(visits, grid.Visit{
			StopID:    st.StopID,
			Sequence:  st.Sequence,
			Time:      st.Time,
			Timepoint: st.Timepoint,
		})
	}
	return grid.TripStops{TripID: tripID, Visits: visits}
}

func stopLookup(s *gtfs.Schedule) grid.StopLookup {
	return func(stopID string) (grid.StopInfo, bool) {
		stop, ok := s.Stop(stopID)
		if !ok {
			return grid.StopInfo{}, false
		}
		return grid.StopInfo{
			ID:   stop.ID,
			Code: stop.Code,
			Name: stop.Name,
			Zone: stop.Zone,
			Lat:  stop.Lat,
			Lon:  stop.Lon,
		}, true
	}
}
