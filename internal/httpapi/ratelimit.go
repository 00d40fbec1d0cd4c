package httpapi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimit rejects requests beyond the configured mutation rate with 429.
// A nil limiter passes everything through.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				IncrementBackpressure("rate_limit")
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// newMutationLimiter builds the limiter from the package settings.
func newMutationLimiter() *rate.Limiter {
	if mutationRPS <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(mutationRPS), mutationBurst)
}
