package views

import (
	"sort"

	"rti.metlink.nz/internal/models"
)

// DelayThresholdSeconds is how far from schedule a trip must run to count as
// early or late in the delay statistics.
const DelayThresholdSeconds = 180

// DelayStatistics summarises the delays of the current trip updates.
func (v *Views) DelayStatistics() models.DelayStatistics {
	var delays []int
	for _, update := range v.live.TripUpdates().ByTrip {
		if update.Delay != nil {
			delays = append(delays, *update.Delay)
		}
	}

	stats := models.DelayStatistics{Trips: len(delays), ThresholdSeconds: DelayThresholdSeconds}
	if len(delays) == 0 {
		return stats
	}

	for _, d := range delays {
		switch {
		case d < -DelayThresholdSeconds:
			stats.Early++
		case d > DelayThresholdSeconds:
			stats.Late++
		}
	}
	stats.EarlyPercent = 100 * float64(stats.Early) / float64(len(delays))
	stats.LatePercent = 100 * float64(stats.Late) / float64(len(delays))

	sort.Ints(delays)
	mid := len(delays) / 2
	median := float64(delays[mid])
	if len(delays)%2 == 0 {
		median = float64(delays[mid-1]+delays[mid]) / 2
	}
	stats.MedianDelay = &median
	return stats
}
