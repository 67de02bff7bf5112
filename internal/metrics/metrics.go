// Package metrics exposes Prometheus collectors for the monitoring engine.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	monitorChecksTotal          *prometheus.CounterVec
	monitorCheckDurationSeconds *prometheus.HistogramVec
	monitorIterationsTotal      prometheus.Counter
	monitorAlertsTotal          *prometheus.CounterVec
	monitorInflightChecks       prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		monitorChecksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monitor_checks_total",
				Help: "Total number of site checks, labeled by site and result.",
			},
			[]string{"site", "result"},
		)

		monitorCheckDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "monitor_check_duration_seconds",
				Help:    "Histogram of site check latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"site"},
		)

		monitorIterationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "monitor_iterations_total",
				Help: "Total number of completed monitoring iterations.",
			},
		)

		monitorAlertsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monitor_alerts_total",
				Help: "Total number of alert dispatch attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		monitorInflightChecks = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "monitor_inflight_checks",
				Help: "Number of site checks currently in flight.",
			},
		)
	})
}

// SanitizeSite extracts a lowercase hostname label from a URL. It returns
// "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCheck records one site check outcome.
func ObserveCheck(site string, failed bool, elapsed time.Duration) {
	if monitorChecksTotal == nil {
		return
	}
	label := SanitizeSite(site)
	result := "success"
	if failed {
		result = "failure"
	}
	monitorChecksTotal.WithLabelValues(label, result).Inc()
	if elapsed > 0 {
		monitorCheckDurationSeconds.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

// ObserveIteration increments the completed-iteration counter.
func ObserveIteration() {
	if monitorIterationsTotal == nil {
		return
	}
	monitorIterationsTotal.Inc()
}

// ObserveAlert records an alert dispatch attempt.
func ObserveAlert(delivered bool) {
	if monitorAlertsTotal == nil {
		return
	}
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	monitorAlertsTotal.WithLabelValues(outcome).Inc()
}

// IncInflightChecks increments the in-flight gauge.
func IncInflightChecks() {
	if monitorInflightChecks == nil {
		return
	}
	monitorInflightChecks.Inc()
}

// DecInflightChecks decrements the in-flight gauge.
func DecInflightChecks() {
	if monitorInflightChecks == nil {
		return
	}
	monitorInflightChecks.Dec()
}
