package httpapi

import (
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/vozlegal/intake/internal/logger"
)

// traceID copies chi's request id into the context key the rest of the
// stack logs under.
func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithTraceID(r.Context(), chiMiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit applies a process-wide token bucket. Webhook senders retry
// on 429, so shedding load here is safe.
func rateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = int(perSecond)
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
