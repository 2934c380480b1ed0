package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is scraped by GET /metrics.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "innovators",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innovators",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by method, route and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "innovators",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by method and route.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	listingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innovators",
			Subsystem: "catalog",
			Name:      "listings_created_total",
			Help:      "Listings created through the API, by kind.",
		},
		[]string{"kind"},
	)

	solutionActivity = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innovators",
			Subsystem: "catalog",
			Name:      "solution_activity_total",
			Help:      "Solution views and purchases recorded.",
		},
		[]string{"action"},
	)

	eventRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innovators",
			Subsystem: "events",
			Name:      "registrations_total",
			Help:      "Event registration attempts by outcome.",
		},
		[]string{"outcome"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "innovators",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		listingsCreated,
		solutionActivity,
		eventRegistrations,
		rateLimited,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// UnmatchedRoute labels requests no route accepted, including 404 and 405.
const UnmatchedRoute = "unmatched"

type routeKey struct{}

// routeLabel is filled in by RouteLabel once the router has matched.
type routeLabel struct {
	template string
}

// InstrumentHandler records request counts and latency for everything except
// the scrape endpoint itself. The path label is the route template reported by
// RouteLabel, so it must wrap a router that uses RouteLabel.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		httpInFlight.Inc()
		started := time.Now()
		label := &routeLabel{template: UnmatchedRoute}
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			httpInFlight.Dec()
			httpRequests.WithLabelValues(r.Method, label.template, strconv.Itoa(sw.code)).Inc()
			httpDuration.WithLabelValues(r.Method, label.template).Observe(time.Since(started).Seconds())
		}()

		next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), routeKey{}, label)))
	})
}

// RouteLabel is a router middleware reporting the matched route template to
// InstrumentHandler.
func RouteLabel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeKey{}).(*routeLabel); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					label.template = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RecordListingCreated counts a listing created through the API.
func RecordListingCreated(kind string) {
	listingsCreated.WithLabelValues(kind).Inc()
}

// RecordSolutionActivity counts a solution view or purchase.
func RecordSolutionActivity(action string) {
	solutionActivity.WithLabelValues(action).Inc()
}

// RecordRegistration counts a registration attempt by outcome
// (ok, not_found, full, duplicate, error).
func RecordRegistration(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	eventRegistrations.WithLabelValues(outcome).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited() {
	rateLimited.Inc()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
