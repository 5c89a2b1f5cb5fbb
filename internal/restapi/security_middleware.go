package restapi

import (
	"net/http"
)

// WithSecurityHeaders wraps the given handler with security headers middleware
func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(handler)
}

// securityHeaders adds the standard hardening headers and answers CORS preflight requests.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Responses are JSON; browsers must not guess otherwise
		h.Set("X-Content-Type-Options", "nosniff")

		// Never render inside a frame
		h.Set("X-Frame-Options", "DENY")

		// Browsers stick to HTTPS for a year once they have seen this
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		// Send only the origin to other sites
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Nothing in a response may load further resources
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';")

		// CORS for browser clients
		if r.Header.Get("Origin") != "" {
			// Public journey planning data, any origin may read it.
			h.Set("Access-Control-Allow-Origin", "*")
			// POST validates routes, DELETE clears the cache
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			// Clients may pass their own request id
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			h.Set("Access-Control-Max-Age", "86400") // 24 hours
		}

		// Preflight requests stop here
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
