// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerClaimsTotal            *prometheus.CounterVec
	crawlerPagesTotal             *prometheus.CounterVec
	crawlerInvalidURLsTotal       prometheus.Counter
	crawlerLedgerErrorsTotal      prometheus.Counter
	crawlerFetchDurationSeconds   prometheus.Histogram
	crawlerFrontierEntries        prometheus.Gauge
	crawlerRateLimitDelaysSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		crawlerClaimsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_claims_total",
				Help: "Total ledger claim attempts, labeled by result.",
			},
			[]string{"result"},
		)

		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total pages fetched after a successful claim, labeled by status.",
			},
			[]string{"status"},
		)

		crawlerInvalidURLsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_invalid_urls_total",
				Help: "Total candidate URLs dropped because they could not be normalized.",
			},
		)

		crawlerLedgerErrorsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_ledger_errors_total",
				Help: "Total ledger calls that failed after exhausting retries.",
			},
		)

		crawlerFetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		crawlerFrontierEntries = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_frontier_entries",
				Help: "Number of entries pending in this process's frontier queue.",
			},
		)

		crawlerRateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_rate_limit_delays_seconds",
				Help:    "Histogram of per-domain politeness wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)
	})
}

// IncClaim records a claim attempt outcome ("claimed", "already_claimed"
// or "error").
func IncClaim(result string) {
	if crawlerClaimsTotal != nil {
		crawlerClaimsTotal.WithLabelValues(result).Inc()
	}
}

// IncPage records a fetched page outcome ("completed" or "fetch_failed").
func IncPage(status string) {
	if crawlerPagesTotal != nil {
		crawlerPagesTotal.WithLabelValues(status).Inc()
	}
}

// IncInvalidURL records a dropped malformed candidate.
func IncInvalidURL() {
	if crawlerInvalidURLsTotal != nil {
		crawlerInvalidURLsTotal.Inc()
	}
}

// IncLedgerError records a ledger failure that exhausted its retries.
func IncLedgerError() {
	if crawlerLedgerErrorsTotal != nil {
		crawlerLedgerErrorsTotal.Inc()
	}
}

// ObserveFetchDuration records one fetch latency.
func ObserveFetchDuration(d time.Duration) {
	if crawlerFetchDurationSeconds != nil {
		crawlerFetchDurationSeconds.Observe(d.Seconds())
	}
}

// SetFrontierEntries reports the current frontier backlog.
func SetFrontierEntries(n int) {
	if crawlerFrontierEntries != nil {
		crawlerFrontierEntries.Set(float64(n))
	}
}

// ObserveRateLimitDelay records a politeness wait for a domain.
func ObserveRateLimitDelay(domain string, d time.Duration) {
	if crawlerRateLimitDelaysSeconds != nil {
		crawlerRateLimitDelaysSeconds.WithLabelValues(domain).Observe(d.Seconds())
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
