// Package metrics exposes Prometheus counters for roster syncs and photo grouping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/lifereel/internal/config"
)

// Metrics holds the service collectors. Each instance owns its registry so
// that several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Syncs        prometheus.Counter
	SyncFailures prometheus.Counter
	SyncDuration prometheus.Histogram

	// Photos placed into a stack, by bucket kind.
	PhotosClassified *prometheus.CounterVec
	PhotosExcluded   prometheus.Counter

	People prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Syncs: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      config.MetricSyncs,
			Help:      config.MetricHelpSyncs,
		}),
		SyncFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      config.MetricSyncFailures,
			Help:      config.MetricHelpSyncFails,
		}),
		SyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.MetricNamespace,
			Name:      config.MetricSyncDuration,
			Help:      config.MetricHelpSyncDuration,
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PhotosClassified: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      config.MetricPhotos,
			Help:      config.MetricHelpPhotos,
		}, []string{config.MetricLabelKind}),
		PhotosExcluded: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      config.MetricExcluded,
			Help:      config.MetricHelpExcluded,
		}),
		People: f.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricNamespace,
			Name:      config.MetricPeople,
			Help:      config.MetricHelpPeople,
		}),
	}
}

// ObserveSync records the outcome of one roster synchronization.
func (m *Metrics) ObserveSync(d time.Duration, people int, err error) {
	if m == nil {
		return
	}
	m.Syncs.Inc()
	m.SyncDuration.Observe(d.Seconds())
	if err != nil {
		m.SyncFailures.Inc()
		return
	}
	m.People.Set(float64(people))
}

// ObserveClassified records photos placed into stacks of the given kind.
func (m *Metrics) ObserveClassified(kind string, n int) {
	if m != nil && n > 0 {
		m.PhotosClassified.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveExcluded records photos that belong to no stack.
func (m *Metrics) ObserveExcluded(n int) {
	if m != nil && n > 0 {
		m.PhotosExcluded.Add(float64(n))
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
