package gtfs

import (
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"rti.metlink.nz/internal/tripid"
)

// resolveTripID returns the scheduled trip a descriptor refers to. A trip id
// the schedule knows is used as is; otherwise the route and start time are
// matched against the route's first departures. An unknown id that cannot
// be matched is kept so the record still shows up.
func resolveTripID(schedule *Schedule, trip *gtfsrtpb.TripDescriptor) (string, bool) {
	id := trip.GetTripId()
	if id != "" {
		if _, ok := schedule.Trip(id); ok || !schedule.Loaded() {
			return id, true
		}
	}

	if trip.GetRouteId() != "" && trip.GetStartTime() != "" {
		trips := schedule.TripsForRoute(trip.GetRouteId())
		candidates := make([]tripid.Candidate, 0, len(trips))
		for _, t := range trips {
			first, ok := schedule.FirstDeparture(t.ID)
			if !ok {
				continue
			}
			candidates = append(candidates, tripid.Candidate{TripID: t.ID, RouteID: t.RouteID, Scheduled: first})
		}
		prediction := tripid.Prediction{RouteID: trip.GetRouteId(), Aimed: trip.GetStartTime()}
		if resolved, ok := tripid.ResolveTripForPrediction(prediction, candidates); ok {
			return resolved, true
		}
	}

	return id, id != ""
}

func parseVehiclePositions(fm *gtfsrtpb.FeedMessage, schedule *Schedule) map[string]VehiclePosition {
	header, _ := headerTime(fm)
	out := make(map[string]VehiclePosition, len(fm.GetEntity()))
	for _, entity := range fm.GetEntity() {
		vp := entity.GetVehicle()
		if vp == nil || vp.Position == nil {
			continue
		}

		tripID, ok := resolveTripID(schedule, vp.GetTrip())
		if !ok {
			continue
		}

		position := VehiclePosition{
			TripID:    tripID,
			RouteID:   vp.GetTrip().GetRouteId(),
			StartTime: vp.GetTrip().GetStartTime(),
			Lat:       float64(vp.GetPosition().GetLatitude()),
			Lon:       float64(vp.GetPosition().GetLongitude()),
			VehicleID: vp.GetVehicle().GetId(),
			Timestamp: observedTime(vp.Timestamp, header),
		}
		if vp.GetTrip().DirectionId != nil {
			direction := int(vp.GetTrip().GetDirectionId())
			position.Direction = &direction
		}
		if vp.GetPosition().Bearing != nil {
			bearing := float64(vp.GetPosition().GetBearing())
			position.Bearing = &bearing
		}
		if position.RouteID == "" {
			if trip, ok := schedule.Trip(tripID); ok {
				position.RouteID = trip.RouteID
			}
		}
		out[tripID] = position
	}
	return out
}

func parseTripUpdates(fm *gtfsrtpb.FeedMessage, schedule *Schedule) map[string]TripUpdate {
	header, _ := headerTime(fm)
	out := make(map[string]TripUpdate, len(fm.GetEntity()))
	for _, entity := range fm.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}

		tripID, ok := resolveTripID(schedule, tu.GetTrip())
		if !ok {
			continue
		}

		update := TripUpdate{
			TripID:    tripID,
			RouteID:   tu.GetTrip().GetRouteId(),
			StartTime: tu.GetTrip().GetStartTime(),
			VehicleID: tu.GetVehicle().GetId(),
			Timestamp: observedTime(tu.Timestamp, header),
		}
		if tu.GetTrip().ScheduleRelationship != nil {
			update.ScheduleRelationship = tu.GetTrip().GetScheduleRelationship().String()
		}
		update.Delay = tripDelay(tu)
		out[tripID] = update
	}
	return out
}

// tripDelay prefers the trip-level delay and falls back to the first stop
// time update that reports one.
func tripDelay(tu *gtfsrtpb.TripUpdate) *int {
	if tu.Delay != nil {
		d := int(tu.GetDelay())
		return &d
	}
	for _, stu := range tu.GetStopTimeUpdate() {
		if stu.GetArrival() != nil && stu.GetArrival().Delay != nil {
			d := int(stu.GetArrival().GetDelay())
			return &d
		}
		if stu.GetDeparture() != nil && stu.GetDeparture().Delay != nil {
			d := int(stu.GetDeparture().GetDelay())
			return &d
		}
	}
	return nil
}

// parseAlerts converts alert entities, resolving affected entities through
// the schedule and silently dropping the ones it does not know.
func parseAlerts(fm *gtfsrtpb.FeedMessage, schedule *Schedule) []Alert {
	alerts := make([]Alert, 0, len(fm.GetEntity()))
	for _, entity := range fm.GetEntity() {
		a := entity.GetAlert()
		if a == nil {
			continue
		}

		alert := Alert{
			ID:          entity.GetId(),
			Header:      translatedText(a.GetHeaderText()),
			Description: translatedText(a.GetDescriptionText()),
		}
		if a.Cause != nil {
			alert.Cause = stringPtr(a.GetCause().String())
		}
		if a.Effect != nil {
			alert.Effect = stringPtr(a.GetEffect().String())
		}
		if a.SeverityLevel != nil {
			alert.Severity = stringPtr(a.GetSeverityLevel().String())
		}
		for _, tr := range a.GetActivePeriod() {
			var period Period
			if start := optionalTime(tr.Start); !start.IsZero() {
				period.Start = &start
			}
			if end := optionalTime(tr.End); !end.IsZero() {
				period.End = &end
			}
			alert.Periods = append(alert.Periods, period)
		}

		seenRoutes, seenStops, seenTrips := map[string]bool{}, map[string]bool{}, map[string]bool{}
		for _, ie := range a.GetInformedEntity() {
			if id := ie.GetRouteId(); id != "" {
				if code, ok := schedule.RouteCodeForID(id); ok && !seenRoutes[code] {
					seenRoutes[code] = true
					alert.RouteCodes = append(alert.RouteCodes, code)
				}
			}
			if id := ie.GetStopId(); id != "" {
				if _, ok := schedule.Stop(id); ok && !seenStops[id] {
					seenStops[id] = true
					alert.StopIDs = append(alert.StopIDs, id)
				}
			}
			if id := ie.GetTrip().GetTripId(); id != "" {
				if _, ok := schedule.Trip(id); ok && !seenTrips[id] {
					seenTrips[id] = true
					alert.TripIDs = append(alert.TripIDs, id)
				}
			}
		}
		alerts = append(alerts, alert)
	}
	return alerts
}
