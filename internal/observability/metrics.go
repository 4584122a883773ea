// Package observability holds the Prometheus collectors of the tracker.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "exercise_tracker"

var (
	usersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "users_created_total",
		Help:      "Number of users registered.",
	})
	duplicateUsernames = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "duplicate_usernames_total",
		Help:      "Number of registrations rejected because the username was taken.",
	})
	activitiesAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "log",
		Name:      "activities_appended_total",
		Help:      "Number of exercise activities appended to user logs.",
	})
	logQueryResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "log",
		Name:      "query_result_count",
		Help:      "Number of activities returned per log query.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
	})
	lastActivityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "log",
		Name:      "last_activity_appended_timestamp_seconds",
		Help:      "Unix timestamp of the most recent append.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		usersCreated,
		duplicateUsernames,
		activitiesAppended,
		logQueryResults,
		lastActivityGauge,
		httpRequests,
		httpDuration,
	)
}

// RecordUserCreated counts a successful registration.
func RecordUserCreated() {
	usersCreated.Inc()
}

// RecordDuplicateUsername counts a rejected registration.
func RecordDuplicateUsername() {
	duplicateUsernames.Inc()
}

// RecordActivityAppended counts an append and moves the watermark gauge.
func RecordActivityAppended(at time.Time) {
	activitiesAppended.Inc()
	if !at.IsZero() {
		lastActivityGauge.Set(float64(at.Unix()))
	}
}

// RecordLogQuery observes the size of a log query result.
func RecordLogQuery(count int) {
	logQueryResults.Observe(float64(count))
}

// RecordHTTPRequest observes one finished HTTP request. route should be the
// router pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
