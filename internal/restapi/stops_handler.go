package restapi

import (
	"log/slog"
	"net/http"

	"rti.metlink.nz/internal/geo"
	"rti.metlink.nz/internal/logging"
	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/views"
)

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	stopID, ok := api.pathID(w, r, "id")
	if !ok {
		return
	}
	limit, fieldErrors := limitParam(r, views.DefaultDepartureLimit, nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	// Alerts are refreshed on demand; the call is a no-op while they are fresh.
	if err := api.GtfsManager.Live.RefreshAlerts(r.Context(), false); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "on-demand alerts refresh failed", err,
			slog.String("stop_id", stopID))
	}

	now := api.now()
	result, err := api.Views.NextDepartures(stopID, now, limit)
	if err != nil {
		api.viewErrorResponse(w, r, err)
		return
	}

	codes := make([]string, 0, len(result.Departures))
	for _, d := range result.Departures {
		codes = append(codes, d.RouteCode)
	}
	api.sendResponse(w, r, models.NewEntryResponse(result, api.routeReferences(now, codes...)))
}

func (api *RestAPI) nearbyStopsHandler(w http.ResponseWriter, r *http.Request) {
	stopID, ok := api.pathID(w, r, "id")
	if !ok {
		return
	}
	limit, fieldErrors := limitParam(r, geo.DefaultNearbyLimit, nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	nearby, err := api.Views.NearbyStops(stopID, limit)
	if err != nil {
		api.viewErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(nearby, models.NewEmptyReferences()))
}
