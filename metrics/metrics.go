// Package metrics exposes Prometheus collectors for dashboard loads and
// reactive passes.
//
// Collectors are registered on an injected prometheus.Registerer so tests
// and embedding hosts own the registry. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vizdash"

// Metrics holds the collectors of one process.
type Metrics struct {
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	cacheHits    *prometheus.CounterVec
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	subsetRows   *prometheus.GaugeVec
	notices      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Loader invocations by dashboard and outcome",
		}, []string{"dashboard", "outcome"}),
		loadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent loading and reshaping a dataset",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"dashboard"}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Passes served from the memoized table",
		}, []string{"dashboard"}),
		passes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reactive passes by dashboard and outcome",
		}, []string{"dashboard", "outcome"}),
		passDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Time spent in one filter and render pass",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dashboard"}),
		subsetRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subset_rows",
			Help:      "Rows selected by the most recent pass",
		}, []string{"dashboard"}),
		notices: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Passes that reported selections without data",
		}, []string{"dashboard"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveLoad records one loader invocation.
func (m *Metrics) ObserveLoad(dashboard string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(dashboard, outcome(err)).Inc()
	m.loadDuration.WithLabelValues(dashboard).Observe(d.Seconds())
}

// CacheHit records a Get served without invoking the loader.
func (m *Metrics) CacheHit(dashboard string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(dashboard).Inc()
}

// ObservePass records one reactive pass.
func (m *Metrics) ObservePass(dashboard string, d time.Duration, rows int, notice bool, err error) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(dashboard, outcome(err)).Inc()
	if err != nil {
		return
	}
	m.passDuration.WithLabelValues(dashboard).Observe(d.Seconds())
	m.subsetRows.WithLabelValues(dashboard).Set(float64(rows))
	if notice {
		m.notices.WithLabelValues(dashboard).Inc()
	}
}
