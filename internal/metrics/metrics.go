package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Symbol outcomes.
const (
	OutcomeFull    = "full"
	OutcomePartial = "partial"
	OutcomeTimeout = "timeout"
)

// Metrics holds the Prometheus collectors of the scanner.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BatchesTotal  prometheus.Counter
	BatchDuration prometheus.Histogram
	SymbolsTotal  *prometheus.CounterVec // labels: outcome
	FetchAttempts *prometheus.CounterVec // labels: kind, result
	CacheLookups  *prometheus.CounterVec // labels: result
}

// New registers and returns all metrics on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niveshak_batches_total",
			Help: "Total watchlist batches run",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "niveshak_batch_duration_seconds",
			Help:    "Wall time of a watchlist batch",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		SymbolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niveshak_symbols_total",
			Help: "Symbols processed (by outcome)",
		}, []string{"outcome"}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niveshak_fetch_attempts_total",
			Help: "Upstream calls (by kind and result)",
		}, []string{"kind", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niveshak_cache_lookups_total",
			Help: "Memo cache lookups (hit or miss)",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.BatchesTotal, m.BatchDuration, m.SymbolsTotal, m.FetchAttempts, m.CacheLookups)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.BatchesTotal.Inc()
	m.BatchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveSymbol(outcome string) {
	if m == nil {
		return
	}
	m.SymbolsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFetch(kind, result string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
