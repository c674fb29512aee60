package tripid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceIDFromTripID(t *testing.T) {
	agencies := []string{"TZM", "NBM", "MNM", "RAIL", "WRL"}

	tests := []struct {
		name     string
		tripID   string
		agencies []string
		expected string
		ok       bool
	}{
		{
			name:     "bus trip with repeated service",
			tripID:   "2__1__447__TZM__501__5__501__5_1",
			agencies: agencies,
			expected: "501_5_1",
			ok:       true,
		},
		{
			name:     "bus trip with short service",
			tripID:   "83__0__1130__NBM__C1__C1_2",
			agencies: agencies,
			expected: "C1_2",
			ok:       true,
		},
		{
			name:     "rail trip keeps full service with spaces",
			tripID:   "WRL__0__6200__RAIL__Rail_MTuWThF-XHol_20240401",
			agencies: agencies,
			expected: "Rail MTuWThF-XHol_20240401",
			ok:       true,
		},
		{
			name:     "rail agency token as the operator",
			tripID:   "HVL__1__4040__WRL__Weekend_Only_2",
			agencies: agencies,
			expected: "Weekend Only_2",
			ok:       true,
		},
		{
			name:     "no suffix",
			tripID:   "1__0__12__MNM__WKDWKD",
			agencies: agencies,
			expected: "WKD",
			ok:       true,
		},
		{
			name:     "longer agency wins at same position",
			tripID:   "x__A__B__SVC__SVC_1",
			agencies: []string{"A", "A__B"},
			expected: "SVC_1",
			ok:       true,
		},
		{
			name:     "unknown agency",
			tripID:   "2__1__447__XYZ__501__5__501__5_1",
			agencies: agencies,
			ok:       false,
		},
		{
			name:     "nothing after agency",
			tripID:   "2__1__447__TZM__",
			agencies: agencies,
			ok:       false,
		},
		{
			name:     "no agencies",
			tripID:   "2__1__447__TZM__501__5__501__5_1",
			agencies: nil,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ServiceIDFromTripID(tt.tripID, tt.agencies)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestServiceIDFromTripIDEarliestAgency(t *testing.T) {
	// The route segment happens to spell another agency id later in the id.
	got, ok := ServiceIDFromTripID("1__0__10__MNM__TZM__TZM_3", []string{"TZM", "MNM"})
	assert.True(t, ok)
	assert.Equal(t, "TZM_3", got)
}
