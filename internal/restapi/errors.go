package restapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/logging"
	"rti.metlink.nz/internal/models"
	"rti.metlink.nz/internal/views"
)

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, text string) {
	setJSONResponseType(&w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.NewResponse(status, nil, text)); err != nil {
		logging.LogError(api.Logger, "failed to encode error response", err)
	}
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "request failed", err, slog.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		Text        string              `json:"text"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "invalid request",
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.Logger, "failed to encode validation error response", err)
	}
}

// viewErrorResponse maps a view error onto a status code.
func (api *RestAPI) viewErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, views.ErrNotFound):
		api.sendNotFound(w, r)
	case errors.Is(err, gtfs.ErrNotLoaded):
		api.errorResponse(w, r, http.StatusServiceUnavailable, "schedule not loaded")
	default:
		api.serverErrorResponse(w, r, err)
	}
}
