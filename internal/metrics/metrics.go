// Package metrics exposes Prometheus collectors for the HTTP layer and the
// scheduling domain. Collectors register on the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coach_app"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	workoutsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workouts_created_total",
		Help:      "Workouts created, including every occurrence of a series.",
	}, []string{"role"})

	seriesDeletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "series_deletions_total",
		Help:      "Series delete requests.",
	})

	seriesDeletedWorkouts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "series_deleted_workouts",
		Help:      "Workouts removed per series delete.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 52, 100, 365},
	})

	packageSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "package_sessions_consumed_total",
		Help:      "Prepaid sessions taken off a balance when a workout is completed.",
	}, []string{"counter"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "In-app notifications created.",
	}, []string{"type"})

	trackingEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_entries_total",
		Help:      "Progress entries logged by kind (body, exercise, nutrition).",
	}, []string{"kind"})
)

func RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func RecordWorkoutsCreated(role string, n int) {
	workoutsCreated.WithLabelValues(role).Add(float64(n))
}

func RecordSeriesDeletion(n int) {
	seriesDeletions.Inc()
	seriesDeletedWorkouts.Observe(float64(n))
}

// RecordPackageSessionConsumed counts a decrement of either the client
// aggregate ("client") or a package payment ("payment").
func RecordPackageSessionConsumed(counter string) {
	packageSessions.WithLabelValues(counter).Inc()
}

func RecordNotification(kind string) {
	notifications.WithLabelValues(kind).Inc()
}

func RecordTrackingEntry(kind string) {
	trackingEntries.WithLabelValues(kind).Inc()
}
