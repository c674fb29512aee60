package gtfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// decodeFeed decodes a realtime feed served either as JSON or as binary
// protobuf. A JSON body must carry both "header" and "entity"; anything less
// is a malformed feed rather than an empty one.
func decodeFeed(body []byte, contentType string) (*gtfsrtpb.FeedMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedFeed)
	}

	fm := &gtfsrtpb.FeedMessage{}
	if strings.Contains(contentType, "protobuf") || trimmed[0] != '{' {
		opts := proto.UnmarshalOptions{AllowPartial: true, DiscardUnknown: true}
		if err := opts.Unmarshal(body, fm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}
		if fm.Header == nil {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedFeed)
		}
		return fm, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	for _, key := range []string{"header", "entity"} {
		if raw, ok := probe[key]; !ok || string(raw) == "null" {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedFeed, key)
		}
	}

	opts := protojson.UnmarshalOptions{AllowPartial: true, DiscardUnknown: true}
	if err := opts.Unmarshal(trimmed, fm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	return fm, nil
}

// headerTime returns the feed header timestamp.
func headerTime(fm *gtfsrtpb.FeedMessage) (time.Time, bool) {
	if fm.GetHeader() == nil || fm.GetHeader().Timestamp == nil {
		return time.Time{}, false
	}
	return time.Unix(int64(fm.GetHeader().GetTimestamp()), 0), true
}

func optionalTime(ts *uint64) time.Time {
	if ts == nil || *ts == 0 {
		return time.Time{}
	}
	return time.Unix(int64(*ts), 0)
}

// observedTime is an entity's own timestamp, or the feed header time when
// the entity carries none.
func observedTime(ts *uint64, header time.Time) time.Time {
	if t := optionalTime(ts); !t.IsZero() {
		return t
	}
	return header
}

// translatedText picks the English translation, falling back to the first.
func translatedText(ts *gtfsrtpb.TranslatedString) *string {
	if ts == nil || len(ts.GetTranslation()) == 0 {
		return nil
	}
	chosen := ts.GetTranslation()[0]
	for _, tr := range ts.GetTranslation() {
		if lang := tr.GetLanguage(); lang == "en" || strings.HasPrefix(lang, "en-") {
			chosen = tr
			break
		}
	}
	if chosen.Text == nil {
		return nil
	}
	text := chosen.GetText()
	return &text
}

func stringPtr(s string) *string {
	return &s
}
