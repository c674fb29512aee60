package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rti.metlink.nz/internal/app"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/views"
)

func TestDeparturesHandler(t *testing.T) {
	api := createTestApi(t)

	t.Run("lists departures with route references", func(t *testing.T) {
		resp, model := serveAndRetrieveEndpoint(t, api, "/api/stops/5000/departures")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, http.StatusOK, model.Code)
		assert.Equal(t, 2, model.Version)

		e := entry(t, model)
		departures := e["departures"].([]interface{})
		require.Len(t, departures, 3)
		first := departures[0].(map[string]interface{})
		assert.Equal(t, "07:10", first["scheduled"])
		assert.Equal(t, "1", first["route"])

		refs := model.Data.(map[string]interface{})["references"].(map[string]interface{})
		routes := refs["routes"].([]interface{})
		require.Len(t, routes, 1)
		assert.Equal(t, "1", routes[0].(map[string]interface{})["code"])
		assert.Len(t, refs["agencies"], 1)
	})

	t.Run("limit", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/stops/5000/departures?limit=1")
		assert.Len(t, entry(t, model)["departures"], 1)
	})

	t.Run("unknown stop", func(t *testing.T) {
		resp, model := serveAndRetrieveEndpoint(t, api, "/api/stops/9999/departures")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, http.StatusNotFound, model.Code)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		assert.Contains(t, fieldErrors(t, api, "/api/stops/50$0/departures"), "id")
		assert.Contains(t, fieldErrors(t, api, "/api/stops/5000/departures?limit=0"), "limit")
		assert.Contains(t, fieldErrors(t, api, "/api/stops/5000/departures?limit=abc"), "limit")
	})
}

func TestNearbyStopsHandler(t *testing.T) {
	api := createTestApi(t)

	resp, model := serveAndRetrieveEndpoint(t, api, "/api/stops/5000/nearby?limit=2")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stops := list(t, model)
	require.Len(t, stops, 2)
	nearest := stops[0].(map[string]interface{})
	assert.Equal(t, "WELL", nearest["stop"].(map[string]interface{})["id"])
	assert.Equal(t, "100 m", nearest["distance"])

	assert.Contains(t, fieldErrors(t, api, "/api/stops/5000/nearby?limit=101"), "limit")
}

func TestRouteHandlers(t *testing.T) {
	api := createTestApi(t)

	t.Run("stops", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/routes/1/stops?direction=1")
		e := entry(t, model)
		assert.Equal(t, "P2", e["patternId"])
		assert.Len(t, e["stops"], 3)
	})

	t.Run("stops of one trip", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/routes/1/stops?trip=1__0__10__TZM__WKD__WKD_1")
		stops := entry(t, model)["stops"].([]interface{})
		require.Len(t, stops, 5)
		assert.Equal(t, "07:00", stops[0].(map[string]interface{})["time"])
	})

	t.Run("timetable", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/routes/1/timetable?date=2024-03-05")
		e := entry(t, model)
		assert.Len(t, e["trips"], 2)
		assert.Len(t, e["rows"], 5)
		assert.Len(t, e["services"], 2)
	})

	t.Run("timetable defaults to today", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/routes/1/timetable")
		assert.Len(t, entry(t, model)["trips"], 2)
	})

	t.Run("services", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/routes/1/services")
		patterns := list(t, model)
		require.Len(t, patterns, 2)
		assert.Equal(t, "Mon-Fri", patterns[0].(map[string]interface{})["pattern"])
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, _ := serveAndRetrieveEndpoint(t, api, "/api/routes/99/timetable")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		assert.Contains(t, fieldErrors(t, api, "/api/routes/1/stops?direction=2"), "direction")
		assert.Contains(t, fieldErrors(t, api, "/api/routes/1/stops?trip=a$b"), "trip")
		assert.Contains(t, fieldErrors(t, api, "/api/routes/1/timetable?date=05-03-2024"), "date")
	})
}

func TestLiveHandlers(t *testing.T) {
	api := createTestApi(t)

	t.Run("no vehicles", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/vehicles")
		assert.Empty(t, list(t, model))
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		resp, _ := serveAndRetrieveEndpoint(t, api, "/api/vehicles/nope")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("alerts", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/alerts?refresh=true")
		assert.Empty(t, list(t, model))
		assert.Contains(t, fieldErrors(t, api, "/api/alerts?refresh=maybe"), "refresh")
	})

	t.Run("delays", func(t *testing.T) {
		_, model := serveAndRetrieveEndpoint(t, api, "/api/delays")
		stats := model.Data.(map[string]interface{})
		assert.EqualValues(t, 0, stats["trips"])
		assert.EqualValues(t, views.DelayThresholdSeconds, stats["thresholdSeconds"])
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		api := createTestApi(t)
		resp, model := serveAndRetrieveEndpoint(t, api, "/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		health := model.Data.(map[string]interface{})
		assert.Equal(t, true, health["loaded"])
		assert.EqualValues(t, 7, health["counts"].(map[string]interface{})["stops"])
	})

	t.Run("not loaded", func(t *testing.T) {
		store := gtfs.NewStaticStore(gtfs.Config{}, discardLogger())
		live := gtfs.NewLiveCache(gtfs.Config{}, store, discardLogger())
		api := NewRestAPI(&app.Application{
			Logger: discardLogger(),
			Views:  views.New(store, live, discardLogger()),
		})
		api.now = time.Now

		resp, model := serveAndRetrieveEndpoint(t, api, "/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "loading", model.Text)

		resp, _ = serveAndRetrieveEndpoint(t, api, "/api/stops/5000/nearby")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestUnknownRoute(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveAndRetrieveEndpoint(t, api, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)
}
