package restapi

import (
	"net/http"
	"time"

	"railnet.dev/railnet/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.Server.RateLimit, time.Second),
	}
}

// Handler returns the router wrapped in the middleware chain, outermost first:
// request logging, security headers, rate limiting, compression.
func (api *RestAPI) Handler() http.Handler {
	router := api.Routes()

	var handler http.Handler = router
	handler = NewCompressionMiddleware(CompressionConfig{
		MinSize: api.Config.Server.CompressionSize,
		Level:   DefaultCompressionConfig().Level,
	})(handler)
	handler = api.rateLimiter.Handler(handler)
	handler = api.WithSecurityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return handler
}

// Shutdown stops the rate limiter's cleanup goroutine.
func (api *RestAPI) Shutdown() {
	api.rateLimiter.Stop()
}
