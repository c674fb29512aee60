package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/api/stops/:id/departures", api.departuresHandler)
	router.HandlerFunc(http.MethodGet, "/api/stops/:id/nearby", api.nearbyStopsHandler)
	router.HandlerFunc(http.MethodGet, "/api/routes/:code/stops", api.routeStopsHandler)
	router.HandlerFunc(http.MethodGet, "/api/routes/:code/timetable", api.timetableHandler)
	router.HandlerFunc(http.MethodGet, "/api/routes/:code/services", api.servicePatternsHandler)
	router.HandlerFunc(http.MethodGet, "/api/vehicles", api.vehiclesHandler)
	router.HandlerFunc(http.MethodGet, "/api/vehicles/:trip", api.vehicleHandler)
	router.HandlerFunc(http.MethodGet, "/api/alerts", api.alertsHandler)
	router.HandlerFunc(http.MethodGet, "/api/delays", api.delaysHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)
	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Handler returns the routes behind the middleware stack. Requests are
// logged first so rate-limited and preflight responses show up too.
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	var handler http.Handler = router
	handler = api.rateLimiter(handler)
	handler = CompressionMiddleware(handler)
	handler = securityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return handler
}
