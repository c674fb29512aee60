package utils

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestExtractIDFromParams(t *testing.T) {
	testCases := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "Basic ID",
			id:   "50000",
			want: "50000",
		},
		{
			name: "ID with JSON extension",
			id:   "WELL.json",
			want: "WELL",
		},
		{
			name: "Trip ID with extension",
			id:   "1__0__101__MNM__2__1__2__1_20240101.json",
			want: "1__0__101__MNM__2__1__2__1_20240101",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var result string
			router.HandlerFunc(http.MethodGet, "/api/test/:id", func(w http.ResponseWriter, r *http.Request) {
				result = ExtractIDFromParams(r, "id")
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/test/"+tc.id, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestParseIntParam(t *testing.T) {
	params := url.Values{"limit": {"5"}, "direction": {"north"}}

	limit, fieldErrors := ParseIntParam(params, "limit", 10, nil)
	assert.Equal(t, 5, limit)
	assert.Empty(t, fieldErrors)

	missing, fieldErrors := ParseIntParam(params, "offset", 7, fieldErrors)
	assert.Equal(t, 7, missing)
	assert.Empty(t, fieldErrors)

	direction, fieldErrors := ParseIntParam(params, "direction", 0, fieldErrors)
	assert.Equal(t, 0, direction)
	assert.Contains(t, fieldErrors, "direction")
}

func TestParseDateParam(t *testing.T) {
	loc := time.FixedZone("NZST", 12*3600)
	now := time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)

	date, fieldErrors := ParseDateParam(url.Values{}, "date", now, loc, nil)
	assert.Empty(t, fieldErrors)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, loc), date, "defaults to the local service day")

	date, fieldErrors = ParseDateParam(url.Values{"date": {"2024-02-29"}}, "date", now, loc, nil)
	assert.Empty(t, fieldErrors)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), date)

	_, fieldErrors = ParseDateParam(url.Values{"date": {"29/02/2024"}}, "date", now, loc, nil)
	assert.Contains(t, fieldErrors, "date")
}
