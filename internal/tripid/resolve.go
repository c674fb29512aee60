package tripid

import (
	"rti.metlink.nz/internal/utils"
)

// MatchWindowSeconds is how far a prediction's aimed time may be from a
// scheduled time and still identify the trip.
const MatchWindowSeconds = 30

// Prediction is a live arrival or departure that arrived without a usable
// trip id.
type Prediction struct {
	RouteID string
	// Aimed is the scheduled clock time the prediction refers to.
	Aimed string
}

// Candidate is a scheduled trip that may correspond to a prediction.
type Candidate struct {
	TripID    string
	RouteID   string
	Scheduled string
}

// ResolveTripForPrediction picks the candidate on the predicted route whose
// scheduled time is closest to the aimed time, within MatchWindowSeconds.
// Times compare on a 24 hour circle so "24:05:00" matches "00:05:00". Equal
// differences resolve to the smallest trip id, making the result independent
// of candidate order.
func ResolveTripForPrediction(p Prediction, candidates []Candidate) (string, bool) {
	aimed, err := utils.ParseClock(p.Aimed)
	if err != nil {
		return "", false
	}
	aimed = utils.WrapDay(aimed)

	bestID := ""
	bestDiff := MatchWindowSeconds + 1
	for _, c := range candidates {
		if c.RouteID != p.RouteID {
			continue
		}
		scheduled, err := utils.ParseClock(c.Scheduled)
		if err != nil {
			continue
		}

		diff := circularDiff(aimed, utils.WrapDay(scheduled))
		if diff > MatchWindowSeconds {
			continue
		}
		if diff < bestDiff || (diff == bestDiff && c.TripID < bestID) {
			bestID, bestDiff = c.TripID, diff
		}
	}

	return bestID, bestID != ""
}

func circularDiff(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrapped := utils.SecondsPerDay - d; wrapped < d {
		return wrapped
	}
	return d
}
