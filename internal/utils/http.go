package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// ExtractIDFromParams retrieves a path parameter from the request context,
// dropping a trailing ".json" extension.
func ExtractIDFromParams(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	rawID := params.ByName(paramName)
	return strings.TrimSuffix(rawID, ".json")
}

// ParseIntParam reads an optional integer query parameter. A missing value
// returns def; an unparseable one records a field error.
func ParseIntParam(params url.Values, key string, def int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return def, fieldErrors
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return def, fieldErrors
	}
	return n, fieldErrors
}

// ParseDateParam reads an optional YYYY-MM-DD query parameter in loc,
// defaulting to today's service day.
func ParseDateParam(params url.Values, key string, now time.Time, loc *time.Location, fieldErrors map[string][]string) (time.Time, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return ServiceDay(now.In(loc)), fieldErrors
	}

	if err := ValidateDate(val); err != nil {
		fieldErrors[key] = append(fieldErrors[key], err.Error())
		return time.Time{}, fieldErrors
	}

	date, _ := time.ParseInLocation(DisplayDateLayout, val, loc)
	return date, fieldErrors
}
