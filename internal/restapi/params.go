package restapi

import (
	"net/http"

	"rti.metlink.nz/internal/utils"
)

// pathID reads and validates a path parameter, answering 400 when it is
// unusable.
func (api *RestAPI) pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := utils.SanitizeInput(utils.ExtractIDFromParams(r, name))
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{name: {err.Error()}})
		return "", false
	}
	return id, true
}

// limitParam reads the optional limit query parameter.
func limitParam(r *http.Request, def int, fieldErrors map[string][]string) (int, map[string][]string) {
	limit, fieldErrors := utils.ParseIntParam(r.URL.Query(), "limit", def, fieldErrors)
	if _, bad := fieldErrors["limit"]; !bad {
		if err := utils.ValidateLimit(limit); err != nil {
			fieldErrors["limit"] = append(fieldErrors["limit"], err.Error())
		}
	}
	return limit, fieldErrors
}

// directionParam reads the optional direction query parameter, 0 by default.
func directionParam(r *http.Request, fieldErrors map[string][]string) (int, map[string][]string) {
	direction, fieldErrors := utils.ParseIntParam(r.URL.Query(), "direction", 0, fieldErrors)
	if _, bad := fieldErrors["direction"]; !bad {
		if err := utils.ValidateDirection(direction); err != nil {
			fieldErrors["direction"] = append(fieldErrors["direction"], err.Error())
		}
	}
	return direction, fieldErrors
}
