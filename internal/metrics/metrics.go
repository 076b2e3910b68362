package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Checks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_checks_total",
			Help: "Total number of completed check cycles",
		},
		[]string{"result"}, // up | down | error
	)

	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_transitions_total",
			Help: "Status transitions observed between consecutive checks",
		},
		[]string{"direction"}, // went_up | went_down
	)

	Alerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_alerts_total",
			Help: "Down-alert dispatch outcomes",
		},
		[]string{"outcome"}, // sent | failed | skipped
	)

	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "monitor_probe_duration_seconds",
			Help:    "Latency of HTTP probes",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register installs the collectors on the default registry. Call once at
// startup.
func Register() {
	prometheus.MustRegister(Checks, Transitions, Alerts, ProbeDuration)
}

// Handler serves the default registry, mounted on /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
