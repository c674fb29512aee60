// Package geo holds the planar distance and compass helpers used to bind live
// vehicles and stops to each other. Distances use an equirectangular
// projection, which is accurate enough at the scale of a single region.
package geo

import (
	"fmt"
	"math"
)

// metersPerDegree is the length of one degree of latitude on a sphere of
// radius 6371 km.
const metersPerDegree = 111195.0

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Delta returns the east/north offset in meters from a to b.
func Delta(a, b Point) (dx, dy float64) {
	meanLat := (a.Lat + b.Lat) / 2 * math.Pi / 180
	dx = (b.Lon - a.Lon) * math.Cos(meanLat) * metersPerDegree
	dy = (b.Lat - a.Lat) * metersPerDegree
	return dx, dy
}

// SquaredDistance returns the squared planar distance in square meters.
// Callers comparing distances should use this and only take the root of the
// winner.
func SquaredDistance(a, b Point) float64 {
	dx, dy := Delta(a, b)
	return dx*dx + dy*dy
}

// HeadingFromBearing converts a bearing in degrees (0 = north, clockwise) to
// an 8-point compass direction.
func HeadingFromBearing(bearing float64) string {
	bearing = math.Mod(bearing, 360)
	if bearing < 0 {
		bearing += 360
	}
	index := int((bearing+22.5)/45.0) % 8
	return compassPoints[index]
}

// HeadingFromDelta converts an east/north offset to an 8-point compass
// direction. A zero offset has no heading and returns "".
func HeadingFromDelta(dx, dy float64) string {
	if dx == 0 && dy == 0 {
		return ""
	}
	return HeadingFromBearing(math.Atan2(dx, dy) * 180 / math.Pi)
}

// RoundDistance rounds a distance to one significant figure.
func RoundDistance(meters float64) float64 {
	if meters <= 0 {
		return 0
	}
	magnitude := math.Pow(10, math.Floor(math.Log10(meters)))
	return math.Round(meters/magnitude) * magnitude
}

// FormatDistance renders a distance rounded to one significant figure, in
// meters below a kilometer and kilometers above.
func FormatDistance(meters float64) string {
	rounded := RoundDistance(meters)
	if rounded < 1000 {
		return fmt.Sprintf("%.0f m", rounded)
	}
	return fmt.Sprintf("%g km", rounded/1000)
}
