package views

import (
	"fmt"
	"sort"
	"time"

	"rti.metlink.nz/internal/calendar"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/utils"
)

func (v *Views) route(s *gtfs.Schedule, code string) (gtfs.Route, error) {
	route, ok := s.RouteByCode(code)
	if !ok {
		return gtfs.Route{}, fmt.Errorf("route %q: %w", code, ErrNotFound)
	}
	return route, nil
}

// RouteStops returns the stop sequence of a route in one direction. With a
// trip id the trip's own calls are listed with their times. Otherwise the
// stop pattern shared by most trips is used, falling back to the trip with
// the most calls when the dataset has no patterns.
func (v *Views) RouteStops(code string, direction int, tripID string) (models.RouteStops, error) {
	s, err := v.loaded()
	if err != nil {
		return models.RouteStops{}, err
	}
	route, err := v.route(s, code)
	if err != nil {
		return models.RouteStops{}, err
	}

	result := models.RouteStops{Route: routeModel(route), Direction: direction, Stops: []models.RouteStop{}}

	if tripID != "" {
		trip, ok := s.Trip(tripID)
		if !ok || trip.RouteID != route.ID {
			return models.RouteStops{}, fmt.Errorf("trip %q on route %q: %w", tripID, code, ErrNotFound)
		}
		result.Direction = trip.Direction
		result.TripID = trip.ID
		result.PatternID = trip.PatternID
		for _, st := range s.StopTimes(trip.ID) {
			stop := models.RouteStop{Stop: stopModel(s, st.StopID), Sequence: st.Sequence, Timepoint: st.Timepoint}
			if seconds, err := utils.ParseClock(st.Time); err == nil {
				stop.Time = utils.ShortClock(seconds)
			}
			result.Stops = append(result.Stops, stop)
		}
		return result, nil
	}

	var trips []gtfs.Trip
	for _, trip := range s.TripsForRoute(route.ID) {
		if trip.Direction == direction {
			trips = append(trips, trip)
		}
	}

	if patternID := commonPattern(s, trips); patternID != "" {
		result.PatternID = patternID
		for _, ps := range s.StopPattern(patternID) {
			result.Stops = append(result.Stops, models.RouteStop{
				Stop:      stopModel(s, ps.StopID),
				Sequence:  ps.Sequence,
				Timepoint: ps.Timepoint,
			})
		}
		return result, nil
	}

	longest := ""
	for _, trip := range trips {
		if longest == "" || len(s.StopTimes(trip.ID)) > len(s.StopTimes(longest)) {
			longest = trip.ID
		}
	}
	for _, st := range s.StopTimes(longest) {
		result.Stops = append(result.Stops, models.RouteStop{
			Stop:      stopModel(s, st.StopID),
			Sequence:  st.Sequence,
			Timepoint: st.Timepoint,
		})
	}
	return result, nil
}

// commonPattern picks the stop pattern used by most trips, lowest id first
// on ties. Patterns missing from the pattern table are ignored.
func commonPattern(s *gtfs.Schedule, trips []gtfs.Trip) string {
	counts := map[string]int{}
	for _, trip := range trips {
		if trip.PatternID != "" && len(s.StopPattern(trip.PatternID)) > 0 {
			counts[trip.PatternID]++
		}
	}
	best := ""
	for id, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && id < best) {
			best = id
		}
	}
	return best
}

// ServicePatterns summarises the calendar of every service the route's
// trips run on, ordered by service id.
func (v *Views) ServicePatterns(code string) ([]models.ServicePattern, error) {
	s, err := v.loaded()
	if err != nil {
		return nil, err
	}
	route, err := v.route(s, code)
	if err != nil {
		return nil, err
	}
	return servicePatterns(s, s.TripsForRoute(route.ID)), nil
}

func servicePatterns(s *gtfs.Schedule, trips []gtfs.Trip) []models.ServicePattern {
	seen := map[string]bool{}
	var ids []string
	for _, trip := range trips {
		if !seen[trip.ServiceID] {
			seen[trip.ServiceID] = true
			ids = append(ids, trip.ServiceID)
		}
	}
	sort.Strings(ids)

	patterns := make([]models.ServicePattern, 0, len(ids))
	for _, id := range ids {
		patterns = append(patterns, servicePattern(id, s.ServiceDates(id)))
	}
	return patterns
}

func servicePattern(serviceID string, dates []time.Time) models.ServicePattern {
	pattern := models.ServicePattern{ServiceID: serviceID, Missing: []string{}, Extra: []string{}}
	summary := calendar.Analyze(dates)
	if summary == nil {
		return pattern
	}
	pattern.First = summary.First.Format(utils.DisplayDateLayout)
	pattern.Last = summary.Last.Format(utils.DisplayDateLayout)
	pattern.Days = summary.Days
	pattern.Pattern = summary.Pattern
	pattern.Missing = append(pattern.Missing, summary.MissingText...)
	pattern.Extra = append(pattern.Extra, summary.ExtraText...)
	pattern.Description = summary.Describe()
	return pattern
}
