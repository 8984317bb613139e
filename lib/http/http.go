package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/semaphore"
)

const (
	PORT = 2425
)

func TimeoutMiddleware(timeout time.Duration) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.TimeoutHandler(h, timeout, "server timed out")
	}
}

// RateLimitingMiddleware caps the number of requests served concurrently.
// Waiting requests give up when their context is done.
func RateLimitingMiddleware(maxConcurrentRequests int) mux.MiddlewareFunc {
	sem := semaphore.NewWeighted(int64(maxConcurrentRequests))
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sem.Acquire(r.Context(), 1); err != nil {
				http.Error(w, "too many requests", http.StatusServiceUnavailable)
				return
			}
			defer sem.Release(1)
			h.ServeHTTP(w, r)
		})
	}
}
