// Package gtfstest builds small static archives for tests.
package gtfstest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Trip ids in the sample dataset.
const (
	TripOutbound      = "1__0__10__TZM__WKD__WKD_1"
	TripOutboundLater = "1__0__11__TZM__WKD__WKD_1"
	TripInbound       = "1__1__12__TZM__WKD__WKD_1"
	TripLoop          = "2__0__20__TZM__SAT__SAT_1"
	TripRail          = "HVL__1__6000__RAIL__Rail_Weekday_2"
	TripPlain         = "orphan-trip"
	TripBadRoute      = "bad-route-trip"
)

// FirstServiceDay is the first weekday the sample services run.
var FirstServiceDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// SampleTables returns the sample dataset, one CSV document per table.
func SampleTables() map[string]string {
	return map[string]string{
		"agency.txt": `agency_id,agency_name,agency_url,agency_timezone
RAIL,Metlink Rail,https://www.metlink.org.nz,Pacific/Auckland
TZM,Tranzurban,https://www.metlink.org.nz,Pacific/Auckland
`,
		"stops.txt": `stop_id,stop_code,stop_name,stop_lat,stop_lon,zone_id,parent_station
WELL,WELL,Wellington Station,-41.2790,174.7806,1,
WELL1,WELL1,Wellington Station Platform 1,-41.2791,174.7807,1,WELL
5000,5000,Lambton Quay - Interchange,-41.2787,174.7792,1,
5006,5006,Lambton Quay - Midland Park,-41.2836,174.7766,1,
5010,5010,Willis Street - Grand Arcade,-41.2870,174.7745,1,
5016,5016,Courtenay Place,-41.2930,174.7800,1,
PETO,PETO,Petone Station,-41.2216,174.8707,3,
`,
		"routes.txt": `route_id,agency_id,route_short_name,route_long_name,route_type
10,TZM,1,Island Bay - Wellington Station,3
20,TZM,2,Lambton Quay Loop,3
60,RAIL,HVL,Hutt Valley Line,2
`,
		"trips.txt": `route_id,service_id,trip_id,trip_headsign,direction_id
10,X,` + TripOutbound + `,Wellington Station,0
10,X,` + TripOutboundLater + `,Wellington Station,0
10,X,` + TripInbound + `,Courtenay Place,1
20,X,` + TripLoop + `,Lambton Quay Loop,0
60,X,` + TripRail + `,Wellington,1
10,plain,` + TripPlain + `,Wellington Station,0
99,X,` + TripBadRoute + `,Nowhere,0
`,
		"stop_times.txt": `trip_id,arrival_time,departure_time,stop_id,stop_sequence,timepoint
` + TripOutbound + `,07:00:00,07:00:00,5016,1,1
` + TripOutbound + `,07:05:00,07:05:00,5010,2,0
` + TripOutbound + `,07:08:00,07:08:00,5006,3,
` + TripOutbound + `,07:10:00,07:10:00,5000,4,1
` + TripOutbound + `,07:15:00,07:15:00,WELL1,5,1
` + TripOutboundLater + `,07:30:00,07:30:00,5016,1,1
` + TripOutboundLater + `,07:35:00,07:35:00,5010,2,0
` + TripOutboundLater + `,07:38:00,07:38:00,5006,3,
` + TripOutboundLater + `,07:40:00,07:40:00,5000,4,1
` + TripOutboundLater + `,07:45:00,07:45:00,WELL1,5,1
` + TripInbound + `,08:00:00,08:00:00,WELL1,1,1
` + TripInbound + `,08:05:00,08:05:00,5000,2,1
` + TripInbound + `,08:20:00,08:20:00,5016,3,1
` + TripLoop + `,09:00:00,09:00:00,5000,1,1
` + TripLoop + `,09:05:00,09:05:00,5006,2,1
` + TripLoop + `,09:10:00,09:10:00,5010,3,1
` + TripLoop + `,09:20:00,09:20:00,5000,4,1
` + TripRail + `,06:50:00,06:50:00,PETO,1,1
` + TripRail + `,7:05:00,,WELL1,2,1
` + TripPlain + `,24:10:00,24:10:00,5016,1,1
` + TripPlain + `,24:25:00,24:25:00,WELL1,2,1
` + TripBadRoute + `,10:00:00,10:00:00,5000,1,1
`,
		"calendar_dates.txt": calendarDates(),
		"stop_patterns.txt": `stop_pattern_id,stop_id,stop_sequence,timepoint
P1,5016,1,1
P1,5010,2,0
P1,5006,3,1
P1,5000,4,1
P1,WELL1,5,1
P2,WELL1,1,1
P2,5000,2,1
P2,5016,3,1
`,
		"stop_pattern_trips.txt": `stop_pattern_id,trip_id
P1,` + TripOutbound + `
P1,` + TripOutboundLater + `
P2,` + TripInbound + `
`,
	}
}

// calendarDates runs WKD_1 on the weekdays of four weeks from
// FirstServiceDay, minus Friday 15 March and plus Saturday 16 March.
func calendarDates() string {
	var b strings.Builder
	b.WriteString("service_id,date,exception_type\n")

	for day := FirstServiceDay; day.Before(FirstServiceDay.AddDate(0, 0, 26)); day = day.AddDate(0, 0, 1) {
		weekday := day.Weekday()
		if weekday == time.Saturday || weekday == time.Sunday || day.Day() == 15 {
			continue
		}
		fmt.Fprintf(&b, "WKD_1,%s,1\n", day.Format("20060102"))
	}
	b.WriteString("WKD_1,20240316,1\n")
	b.WriteString("WKD_1,20240304,1\n")
	b.WriteString("WKD_1,20240401,2\n")

	for _, date := range []string{"20240309", "20240316", "20240323"} {
		fmt.Fprintf(&b, "SAT_1,%s,1\n", date)
	}
	for day := FirstServiceDay; day.Before(FirstServiceDay.AddDate(0, 0, 5)); day = day.AddDate(0, 0, 1) {
		fmt.Fprintf(&b, "Rail Weekday_2,%s,1\n", day.Format("20060102"))
	}
	b.WriteString("plain,20240304,1\n")
	return b.String()
}

// BuildArchive zips the given tables.
func BuildArchive(t testing.TB, tables map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(tables[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// SampleArchive zips SampleTables.
func SampleArchive(t testing.TB) []byte {
	t.Helper()
	return BuildArchive(t, SampleTables())
}

// WriteArchive writes an archive into a temporary directory and returns
// its path.
func WriteArchive(t testing.TB, archive []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gtfs.zip")
	require.NoError(t, os.WriteFile(path, archive, 0o644))
	return path
}

// Without returns a copy of tables with the named tables removed.
func Without(tables map[string]string, names ...string) map[string]string {
	out := make(map[string]string, len(tables))
	for name, content := range tables {
		out[name] = content
	}
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// With returns a copy of tables with one table replaced.
func With(tables map[string]string, name, content string) map[string]string {
	out := Without(tables)
	out[name] = content
	return out
}
