// Package restapi serves the views as JSON over HTTP.
package restapi

import (
	"net/http"
	"time"

	"rti.metlink.nz/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter func(http.Handler) http.Handler
	now         func() time.Time
}

// NewRestAPI creates a RestAPI with a per-client rate limiter.
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.Server.RateLimit, time.Second, app.Config.Server.TrustedProxies),
		now:         time.Now,
	}
}
