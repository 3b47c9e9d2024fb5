package providers

import (
	"net/http"
	"time"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware labels requests by registered route. Anything else
// collapses into "other" so probes hitting the catch-all mux entry cannot
// grow the endpoint label set.
func MetricsMiddleware(metrics MetricsProviderInterface, routes []structures.Route, next http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		known[route.Url] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := r.URL.Path
		if _, ok := known[endpoint]; !ok {
			endpoint = "other"
		}
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
