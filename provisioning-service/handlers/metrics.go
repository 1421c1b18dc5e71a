package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsHandler creates a new Prometheus metrics handler
func NewMetricsHandler() http.Handler {
	return promhttp.Handler()
}

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// NewHealthHandler answers 200 when every check passes and 503 otherwise
func NewHealthHandler(checks map[string]HealthCheck) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}

		writeJSON(w, status, map[string]interface{}{
			"status": http.StatusText(status),
			"checks": result,
		})
	})
}
