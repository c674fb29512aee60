package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"rti.metlink.nz/internal/app"
	"rti.metlink.nz/internal/appconf"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/gtfs/gtfstest"
	"rti.metlink.nz/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testNow is a Tuesday morning in the sample dataset's service window.
func testNow(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)
	return time.Date(2024, 3, 5, 7, 9, 0, 0, loc)
}

// createTestApi creates a RestAPI over the sample dataset with the clock
// fixed at testNow.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	path := gtfstest.WriteArchive(t, gtfstest.SampleArchive(t))
	config, err := appconf.Finalize(appconf.Config{
		EnvName: "test",
		Static:  appconf.StaticConfig{URL: path},
	}, nil)
	require.NoError(t, err)

	manager, err := gtfs.InitManager(app.GtfsConfigFrom(config), discardLogger())
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	api := NewRestAPI(app.New(config, manager, discardLogger()))
	api.now = func() time.Time { return testNow(t) }
	return api
}

// serveAndRetrieveEndpoint runs a request through the full handler stack and
// decodes the response envelope.
func serveAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	recorder := httptest.NewRecorder()
	api.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, endpoint, nil))
	resp := recorder.Result()

	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return resp, response
}

func entry(t *testing.T, response models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", response.Data)
	e, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "entry is %T", data["entry"])
	return e
}

func list(t *testing.T, response models.ResponseModel) []interface{} {
	t.Helper()
	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", response.Data)
	l, ok := data["list"].([]interface{})
	require.True(t, ok, "list is %T", data["list"])
	return l
}

func fieldErrors(t *testing.T, api *RestAPI, endpoint string) map[string]interface{} {
	t.Helper()
	recorder := httptest.NewRecorder()
	api.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, endpoint, nil))
	require.Equal(t, http.StatusBadRequest, recorder.Code, endpoint)

	var body struct {
		FieldErrors map[string]interface{} `json:"fieldErrors"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body.FieldErrors
}
