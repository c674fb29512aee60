package views

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"rti.metlink.nz/internal/geo"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/models"
)

// NearbyStops lists the stops closest to a stop, nearest first.
func (v *Views) NearbyStops(stopID string, limit int) ([]models.NearbyStop, error) {
	s, err := v.loaded()
	if err != nil {
		return nil, err
	}
	origin, ok := s.Stop(stopID)
	if !ok {
		return nil, fmt.Errorf("stop %q: %w", stopID, ErrNotFound)
	}

	candidates := make([]geo.StopPoint, 0, len(s.Stops()))
	for _, stop := range s.Stops() {
		if stop.Lat == 0 && stop.Lon == 0 {
			continue
		}
		candidates = append(candidates, geo.StopPoint{StopID: stop.ID, Point: geo.Point{Lat: stop.Lat, Lon: stop.Lon}})
	}

	matches := geo.NearbyStops(geo.StopPoint{StopID: origin.ID, Point: geo.Point{Lat: origin.Lat, Lon: origin.Lon}}, candidates, limit)
	nearby := make([]models.NearbyStop, 0, len(matches))
	for _, m := range matches {
		nearby = append(nearby, models.NearbyStop{
			Stop:     stopModel(s, m.Stop.StopID),
			Distance: m.Distance,
			Meters:   m.Meters,
			Heading:  m.Heading,
		})
	}
	return nearby, nil
}

// VehicleProximity places the vehicle running a trip against the trip's
// nearest stop. The vehicle is reported even when the schedule has no
// stops for the trip.
func (v *Views) VehicleProximity(tripID string) (models.VehicleProximity, error) {
	vehicle, ok := v.live.VehiclePositions().ByTrip[tripID]
	if !ok {
		return models.VehicleProximity{}, fmt.Errorf("vehicle for trip %q: %w", tripID, ErrNotFound)
	}
	return proximity(v.schedule.Snapshot(), vehicle, v.live.TripUpdates()), nil
}

// AllVehicleProximity places every live vehicle, ordered by route code and
// trip id.
func (v *Views) AllVehicleProximity() []models.VehicleProximity {
	s := v.schedule.Snapshot()
	vehicles := v.live.VehiclePositions()
	updates := v.live.TripUpdates()

	p := pool.NewWithResults[models.VehicleProximity]().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for _, vehicle := range vehicles.ByTrip {
		p.Go(func() models.VehicleProximity {
			return proximity(s, vehicle, updates)
		})
	}
	results := p.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].RouteCode != results[j].RouteCode {
			return results[i].RouteCode < results[j].RouteCode
		}
		return results[i].TripID < results[j].TripID
	})
	return results
}

func proximity(s *gtfs.Schedule, vehicle gtfs.VehiclePosition, updates *gtfs.TripUpdateSnapshot) models.VehicleProximity {
	p := models.VehicleProximity{
		TripID:    vehicle.TripID,
		RouteCode: routeCode(s, vehicle.RouteID, vehicle.TripID),
		VehicleID: vehicle.VehicleID,
		Location:  models.Location{Lat: vehicle.Lat, Lon: vehicle.Lon},
		Timestamp: vehicle.Timestamp,
	}
	if vehicle.Bearing != nil {
		p.Bearing = geo.HeadingFromBearing(*vehicle.Bearing)
	}

	var stops []geo.StopPoint
	for _, st := range s.StopTimes(vehicle.TripID) {
		if stop, ok := s.Stop(st.StopID); ok {
			stops = append(stops, geo.StopPoint{StopID: stop.ID, Sequence: st.Sequence, Point: geo.Point{Lat: stop.Lat, Lon: stop.Lon}})
		}
	}
	if match, ok := geo.NearestStop(geo.Point{Lat: vehicle.Lat, Lon: vehicle.Lon}, stops); ok {
		stop := stopModel(s, match.Stop.StopID)
		p.NearestStop = &stop
		p.Sequence = match.Stop.Sequence
		p.Distance = match.Distance
		p.Meters = match.Meters
		p.Heading = match.Heading
	}

	if update, ok := updates.ByTrip[vehicle.TripID]; ok && update.Delay != nil {
		delay := *update.Delay
		p.Delay = &delay
		p.Status = delayStatus(delay)
	}
	return p
}
