package gtfs

import "time"

// KeepoverWindow is how long an entry missing from the latest poll may be
// kept, measured against the new feed's header timestamp.
const KeepoverWindow = 5 * time.Minute

type keepable interface {
	vehicleKey() string
	observedAt() time.Time
}

// mergeKeepovers copies into fresh every entry of previous that fresh lacks,
// as long as it was observed within KeepoverWindow of header and its vehicle
// is not reported anywhere in fresh. It returns the number of entries kept.
func mergeKeepovers[T keepable](previous, fresh map[string]T, header time.Time) int {
	vehicles := make(map[string]bool, len(fresh))
	for _, entry := range fresh {
		if id := entry.vehicleKey(); id != "" {
			vehicles[id] = true
		}
	}

	kept := 0
	for key, entry := range previous {
		if _, ok := fresh[key]; ok {
			continue
		}
		age := header.Sub(entry.observedAt())
		if age < 0 {
			age = -age
		}
		if age > KeepoverWindow {
			continue
		}
		if vehicles[entry.vehicleKey()] {
			continue
		}
		fresh[key] = entry
		kept++
	}
	return kept
}
