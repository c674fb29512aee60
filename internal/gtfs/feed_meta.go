package gtfs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FeedMeta is the validity window of a static dataset, as published by the
// feed-metadata endpoint and recorded next to the cached archive.
type FeedMeta struct {
	StartDate time.Time
	EndDate   time.Time
}

// IsZero reports whether no window is known.
func (m FeedMeta) IsZero() bool {
	return m.StartDate.IsZero() && m.EndDate.IsZero()
}

// Equal reports whether both windows have the same dates.
func (m FeedMeta) Equal(other FeedMeta) bool {
	return m.StartDate.Equal(other.StartDate) && m.EndDate.Equal(other.EndDate)
}

// NewerThan reports whether m starts later than other. An unknown window is
// never newer.
func (m FeedMeta) NewerThan(other FeedMeta) bool {
	if m.StartDate.IsZero() {
		return false
	}
	return other.StartDate.IsZero() || m.StartDate.After(other.StartDate)
}

type feedMetaJSON struct {
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	FeedStartDate string `json:"feed_start_date,omitempty"`
	FeedEndDate   string `json:"feed_end_date,omitempty"`
}

func (m FeedMeta) MarshalJSON() ([]byte, error) {
	out := feedMetaJSON{}
	if !m.StartDate.IsZero() {
		out.StartDate = m.StartDate.Format(gtfsDateFormat)
	}
	if !m.EndDate.IsZero() {
		out.EndDate = m.EndDate.Format(gtfsDateFormat)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either key style, dates as YYYYMMDD or YYYY-MM-DD,
// and a one-element array wrapping the object.
func (m *FeedMeta) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []FeedMeta
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			return fmt.Errorf("%w: empty feed metadata", ErrMalformedFeed)
		}
		*m = list[0]
		return nil
	}

	var raw feedMetaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, end := raw.StartDate, raw.EndDate
	if start == "" {
		start = raw.FeedStartDate
	}
	if end == "" {
		end = raw.FeedEndDate
	}
	if start == "" {
		return fmt.Errorf("%w: feed metadata has no start date", ErrMalformedFeed)
	}

	var err error
	if m.StartDate, err = parseFeedDate(start); err != nil {
		return err
	}
	if end != "" {
		if m.EndDate, err = parseFeedDate(end); err != nil {
			return err
		}
	}
	return nil
}

func parseFeedDate(value string) (time.Time, error) {
	for _, layout := range []string{gtfsDateFormat, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrMalformedFeed, value)
}
