package models

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse(t *testing.T) {
	before := time.Now().UnixMilli()
	response := NewResponse(http.StatusServiceUnavailable, nil, "schedule not loaded")
	after := time.Now().UnixMilli()

	assert.Equal(t, http.StatusServiceUnavailable, response.Code)
	assert.Equal(t, "schedule not loaded", response.Text)
	assert.Equal(t, 2, response.Version)
	assert.Nil(t, response.Data)
	assert.GreaterOrEqual(t, response.CurrentTime, before)
	assert.LessOrEqual(t, response.CurrentTime, after)
}

func TestNewEntryResponse(t *testing.T) {
	departures := StopDepartures{Stop: Stop{ID: "5000"}, Departures: []Departure{}, Alerts: []Alert{}}
	references := NewEmptyReferences()
	references.Routes = append(references.Routes, Route{ID: "10", Code: "1"})

	response := NewEntryResponse(departures, references)
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "OK", response.Text)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, departures, data["entry"])
	assert.Equal(t, references, data["references"])
}

func TestNewListResponse(t *testing.T) {
	response := NewListResponse([]NearbyStop{}, NewEmptyReferences())

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []NearbyStop{}, data["list"])
	assert.Equal(t, false, data["limitExceeded"])
}

// Empty references encode as empty arrays, never null.
func TestEmptyReferencesJSON(t *testing.T) {
	b, err := json.Marshal(NewEmptyReferences())
	require.NoError(t, err)
	assert.JSONEq(t, `{"agencies":[],"routes":[],"stops":[],"situations":[]}`, string(b))
}
