package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interntrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interntrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interntrack_auth_failures_total",
		Help: "Count of failed authentication attempts by reason",
	}, []string{"reason"})

	tokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interntrack_tokens_issued_total",
		Help: "Count of bearer tokens issued",
	})

	tokenSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interntrack_token_sweep_operations_total",
		Help: "Count of token sweeper runs by result",
	}, []string{"result"})

	tokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interntrack_tokens_swept_total",
		Help: "Count of expired tokens removed by the sweeper",
	})

	attendanceConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interntrack_attendance_conflicts_total",
		Help: "Count of attendance creates rejected by the per-day unique key",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthFailure increments the auth failure counter for a reason label.
func ObserveAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}

// ObserveTokenIssued counts a newly minted bearer token.
func ObserveTokenIssued() {
	tokensIssued.Inc()
}

// ObserveTokenSweep records a sweeper run and how many tokens it removed.
func ObserveTokenSweep(result string, removed int64) {
	tokenSweeps.WithLabelValues(result).Inc()
	if removed > 0 {
		tokensSwept.Add(float64(removed))
	}
}

// ObserveAttendanceConflict counts a duplicate-day attendance rejection.
func ObserveAttendanceConflict() {
	attendanceConflicts.Inc()
}
