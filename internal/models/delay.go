package models

// DelayStatistics summarises the delays of every trip with a live update.
// Early and Late count trips more than the threshold away from schedule.
type DelayStatistics struct {
	Trips            int     `json:"trips"`
	ThresholdSeconds int     `json:"thresholdSeconds"`
	Early            int     `json:"early"`
	Late             int     `json:"late"`
	EarlyPercent     float64 `json:"earlyPercent"`
	LatePercent      float64 `json:"latePercent"`
	// MedianDelay is in signed seconds; nil without any delays.
	MedianDelay *float64 `json:"medianDelay"`
}
