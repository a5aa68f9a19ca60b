package ratelimit

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewRateLimitMiddleware limits the whole server to rps requests per second with the given burst.
func NewRateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":"Too many requests"}`))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
