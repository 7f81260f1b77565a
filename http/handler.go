// Package http assembles the daemon's full HTTP surface: the threat
// query routes plus the operational health and metrics endpoints.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threatdesk/threatdesk/kit/tracing"
	kithttp "github.com/threatdesk/threatdesk/kit/transport/http"
)

const (
	// HealthPath is the liveness endpoint.
	HealthPath = "/health"

	// MetricsPath exposes the Prometheus registry.
	MetricsPath = "/metrics"
)

// APIHandler is the root handler for the daemon.
type APIHandler struct {
	chi.Router
}

// NewAPIHandler mounts the query routes under the standard middleware
// chain and registers the HTTP metrics on the given registry.
func NewAPIHandler(registry *prometheus.Registry, threats http.Handler) *APIHandler {
	reqMetric := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "http",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Number of HTTP requests received.",
	}, kithttp.MetricLabels)

	durMetric := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "http",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Time taken to respond to HTTP requests.",
	}, kithttp.MetricLabels)

	registry.MustRegister(reqMetric, durMetric)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
		kithttp.Metrics("threatdesk", reqMetric, durMetric),
		trace,
	)

	r.Get(HealthPath, handleHealth)
	r.Handle(MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Mount("/", threats)

	return &APIHandler{Router: r}
}

func trace(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		span, r := tracing.ExtractFromHTTPRequest(r, "threatdesk")
		defer span.Finish()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"name":"threatdesk","status":"pass","checks":[]}`)
}
