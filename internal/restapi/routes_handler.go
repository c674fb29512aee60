package restapi

import (
	"net/http"

	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/utils"
)

func (api *RestAPI) routeStopsHandler(w http.ResponseWriter, r *http.Request) {
	code, ok := api.pathID(w, r, "code")
	if !ok {
		return
	}
	direction, fieldErrors := directionParam(r, nil)
	tripID := utils.SanitizeInput(r.URL.Query().Get("trip"))
	if tripID != "" {
		if err := utils.ValidateID(tripID); err != nil {
			fieldErrors["trip"] = append(fieldErrors["trip"], err.Error())
		}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	result, err := api.Views.RouteStops(code, direction, tripID)
	if err != nil {
		api.viewErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(result, api.routeReferences(api.now(), code)))
}

func (api *RestAPI) timetableHandler(w http.ResponseWriter, r *http.Request) {
	code, ok := api.pathID(w, r, "code")
	if !ok {
		return
	}
	now := api.now()
	direction, fieldErrors := directionParam(r, nil)
	date, fieldErrors := utils.ParseDateParam(r.URL.Query(), "date", now, api.GtfsManager.Snapshot().Timezone(), fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	timetable, err := api.Views.Timetable(code, direction, date)
	if err != nil {
		api.viewErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(timetable, api.routeReferences(now, code)))
}

func (api *RestAPI) servicePatternsHandler(w http.ResponseWriter, r *http.Request) {
	code, ok := api.pathID(w, r, "code")
	if !ok {
		return
	}

	patterns, err := api.Views.ServicePatterns(code)
	if err != nil {
		api.viewErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(patterns, api.routeReferences(api.now(), code)))
}
