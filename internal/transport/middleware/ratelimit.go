package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/frahmantamala/access-management/internal"
)

var errRateLimited = &internal.AppError{
	Type:       "RATE_LIMITED",
	Code:       "TOO_MANY_REQUESTS",
	Message:    "Too many requests, try again later",
	StatusCode: http.StatusTooManyRequests,
}

// RateLimitByIP limits each client address to perMinute requests. Zero
// disables the limit.
func RateLimitByIP(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			status, body := errRateLimited.ToHTTPResponse()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		}),
	)
}
