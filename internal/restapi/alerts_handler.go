package restapi

import (
	"net/http"
	"strconv"

	"rti.metlink.nz/internal/logging"
	"rti.metlink.nz/internal/models"
)

// alertsHandler lists the active alerts. With refresh=true the feed is
// fetched first, at most once per configured interval.
func (api *RestAPI) alertsHandler(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("refresh"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			api.validationErrorResponse(w, r, map[string][]string{"refresh": {"refresh must be true or false"}})
			return
		}
		if err := api.GtfsManager.Live.RefreshAlerts(r.Context(), force); err != nil {
			logging.LogError(logging.FromContext(r.Context()), "alerts refresh failed", err)
		}
	}

	api.sendResponse(w, r, models.NewListResponse(api.Views.Alerts(api.now()), models.NewEmptyReferences()))
}

func (api *RestAPI) delaysHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(api.Views.DelayStatistics()))
}

// healthHandler answers 503 until the first schedule has loaded.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := api.Views.Health(api.now())
	if !health.Loaded {
		setJSONResponseType(&w)
		w.WriteHeader(http.StatusServiceUnavailable)
		api.sendResponse(w, r, models.NewResponse(http.StatusServiceUnavailable, health, "loading"))
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(health))
}
