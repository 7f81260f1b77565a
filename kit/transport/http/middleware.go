package http

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware constructor.
type Middleware func(http.Handler) http.Handler

// MetricLabels are the labels the Metrics middleware reports on every
// request metric.
var MetricLabels = []string{"handler", "method", "path", "status", "response_code", "user_agent"}

// Metrics records request counts and durations per normalized route.
func Metrics(name string, reqMetric *prometheus.CounterVec, durMetric *prometheus.HistogramVec) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			statusW := NewStatusResponseWriter(w)

			defer func(start time.Time) {
				statusCode := statusW.Code()
				// only report metrics for 2XX or 5XX requests
				if !reportFromCode(statusCode) {
					return
				}

				label := prometheus.Labels{
					"handler":       name,
					"method":        r.Method,
					"path":          normalizePath(r.URL.Path),
					"status":        statusW.StatusCodeClass(),
					"response_code": fmt.Sprintf("%d", statusCode),
					"user_agent":    UserAgent(r),
				}

				durMetric.With(label).Observe(time.Since(start).Seconds())
				reqMetric.With(label).Inc()
			}(time.Now())

			next.ServeHTTP(statusW, r)
		}
		return http.HandlerFunc(fn)
	}
}

// UserAgent returns the parsed product name of the caller, or "unknown".
func UserAgent(r *http.Request) string {
	header := r.Header.Get("User-Agent")
	if header == "" {
		return "unknown"
	}

	return ua.Parse(header).Name
}

const idSlug = ":id"

// collections whose child path segment is an entity id rather than a
// static route
var idCollections = map[string]bool{
	"indicators": true,
	"campaigns":  true,
}

// static child segments that must never be normalized to an id slug
var staticChildren = map[string]bool{
	"search": true,
}

// normalizePath replaces entity ids in a request path with the ":id"
// slug so metric label cardinality stays bounded.
func normalizePath(p string) string {
	var parts []string
	prev := ""
	for head, tail := shiftPath(p); ; head, tail = shiftPath(tail) {
		piece := head
		if idCollections[prev] && !staticChildren[piece] && piece != "" {
			piece = idSlug
		}
		parts = append(parts, piece)
		prev = head

		if tail == "/" {
			break
		}
	}
	return "/" + path.Join(parts...)
}

func shiftPath(p string) (head, tail string) {
	p = path.Clean("/" + p)
	i := strings.Index(p[1:], "/") + 1
	if i <= 0 {
		return p[1:], "/"
	}
	return p[1:i], p[i:]
}

// reportFromCode is a helper function to determine if telemetry data
// should be reported for this response.
func reportFromCode(c int) bool {
	return (c >= 200 && c <= 299) || (c >= 500 && c <= 599)
}
