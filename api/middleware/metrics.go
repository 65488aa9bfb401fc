package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
)

// Metrics records per-route request counts and latencies.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			m.ObserveRequest(r.Method, routePattern(r), strconv.Itoa(rec.status), time.Since(start))
		})
	}
}
