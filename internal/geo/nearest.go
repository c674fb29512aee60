package geo

import (
	"math"
	"sort"
)

// DefaultNearbyLimit caps nearest-neighbour stop searches.
const DefaultNearbyLimit = 20

// StopPoint is a stop with a position, as seen by the proximity helpers.
type StopPoint struct {
	StopID   string
	Sequence int
	Point
}

// Match is the result of a proximity search.
type Match struct {
	Stop            StopPoint
	SquaredDistance float64
	// Meters is the unrounded distance; use Distance for display.
	Meters   float64
	Distance string
	// Heading is the compass direction from the stop towards the target.
	Heading string
}

func newMatch(stop StopPoint, target Point, squared float64) Match {
	meters := math.Sqrt(squared)
	dx, dy := Delta(stop.Point, target)
	return Match{
		Stop:            stop,
		SquaredDistance: squared,
		Meters:          meters,
		Distance:        FormatDistance(meters),
		Heading:         HeadingFromDelta(dx, dy),
	}
}

// NearestStop finds the stop closest to a vehicle position. The first stop
// wins ties, so a looping trip reports its earliest visit.
func NearestStop(vehicle Point, stops []StopPoint) (Match, bool) {
	if len(stops) == 0 {
		return Match{}, false
	}

	best := 0
	bestDistance := SquaredDistance(stops[0].Point, vehicle)
	for i := 1; i < len(stops); i++ {
		d := SquaredDistance(stops[i].Point, vehicle)
		if d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	return newMatch(stops[best], vehicle, bestDistance), true
}

// NearbyStops returns the stops closest to origin in ascending distance,
// excluding origin itself and anything at exactly the same position.
func NearbyStops(origin StopPoint, all []StopPoint, limit int) []Match {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	matches := make([]Match, 0, len(all))
	for _, candidate := range all {
		if candidate.StopID == origin.StopID {
			continue
		}
		d := SquaredDistance(candidate.Point, origin.Point)
		if d == 0 {
			continue
		}
		matches = append(matches, Match{Stop: candidate, SquaredDistance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].SquaredDistance != matches[j].SquaredDistance {
			return matches[i].SquaredDistance < matches[j].SquaredDistance
		}
		return matches[i].Stop.StopID < matches[j].Stop.StopID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	for i := range matches {
		matches[i] = newMatch(matches[i].Stop, origin.Point, matches[i].SquaredDistance)
	}
	return matches
}
