// Package prom exports layout and snapshot cache events as Prometheus metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/stagger/pkg/observability"
)

// Adapter implements observability.LayoutHooks and observability.CacheHooks.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	measures      *prometheus.CounterVec
	measureTime   prometheus.Histogram
	replays       *prometheus.CounterVec
	replayTime    *prometheus.HistogramVec
	replayItems   *prometheus.CounterVec
	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// New constructs a Prometheus adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		measures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "measure_total",
				Help:        "Item measurements by result",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		measureTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "measure_duration_seconds",
			Help:        "Time spent in the measurement collaborator",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
			ConstLabels: constLabels,
		}),
		replays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "replay_total",
				Help:        "Moves to a position by strategy and result",
				ConstLabels: constLabels,
			},
			[]string{"strategy", "result"},
		),
		replayTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "replay_duration_seconds",
				Help:        "Duration of moves to a position",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"strategy"},
		),
		replayItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "replay_items_total",
				Help:        "Items replayed by source (measured or cached)",
				ConstLabels: constLabels,
			},
			[]string{"source"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "cache_requests_total",
				Help:        "Cache lookups by key type and result",
				ConstLabels: constLabels,
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "cache_written_bytes_total",
				Help:        "Bytes written to the cache by key type",
				ConstLabels: constLabels,
			},
			[]string{"key_type"},
		),
	}
	reg.MustRegister(a.measures, a.measureTime, a.replays, a.replayTime, a.replayItems, a.cacheRequests, a.cacheBytes)
	return a
}

// OnMeasure counts a measurement and observes its duration.
func (a *Adapter) OnMeasure(_ int, d time.Duration, err error) {
	a.measures.WithLabelValues(result(err)).Inc()
	a.measureTime.Observe(d.Seconds())
}

// OnReplay counts a replay and the items it touched.
func (a *Adapter) OnReplay(strategy string, _, measured, cached int, d time.Duration, err error) {
	a.replays.WithLabelValues(strategy, result(err)).Inc()
	a.replayTime.WithLabelValues(strategy).Observe(d.Seconds())
	a.replayItems.WithLabelValues("measured").Add(float64(measured))
	a.replayItems.WithLabelValues("cached").Add(float64(cached))
}

// OnCacheHit increments the hit counter for keyType.
func (a *Adapter) OnCacheHit(_ context.Context, keyType string) {
	a.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss increments the miss counter for keyType.
func (a *Adapter) OnCacheMiss(_ context.Context, keyType string) {
	a.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet adds size to the written bytes for keyType.
func (a *Adapter) OnCacheSet(_ context.Context, keyType string, size int) {
	a.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// result maps an error to a stable label value.
func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.LayoutHooks = (*Adapter)(nil)
	_ observability.CacheHooks  = (*Adapter)(nil)
)
