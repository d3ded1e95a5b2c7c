package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "windmap"

// Metrics holds the Prometheus counters, histograms, and gauges for the animation and feeds
type Metrics struct {
	FramesTotal   prometheus.Counter
	Particles     prometheus.Gauge
	BurstsTotal   prometheus.Counter
	ResetsTotal   prometheus.Counter
	FrameDuration prometheus.Histogram
	InitRetries   prometheus.Counter
	DriverState   prometheus.Gauge // 0 uninitialized, 1 waiting for size, 2 running

	// Feed metrics
	FeedRefreshes *prometheus.CounterVec // labels: source={static,owm,kafka}, outcome={success,error,skipped}
	FeedCache     *prometheus.CounterVec // labels: result={hit,miss,refresh}
}

func newMetrics(full bool) *Metrics {
	help := func(s string) string {
		if full {
			return s
		}
		return ""
	}
	frameBuckets := []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.05, 0.1}

	return &Metrics{
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      help("Total animation frames stepped."),
		}),
		Particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "particles",
			Help:      help("Live particles in the pool."),
		}),
		BurstsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bursts_total",
			Help:      help("Gust bursts spawned."),
		}),
		ResetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "particle_resets_total",
			Help:      help("Particles recycled after dying or leaving the canvas."),
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      help("Wall time of one simulate-and-draw step."),
			Buckets:   frameBuckets,
		}),
		InitRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "init_retries_total",
			Help:      help("Init attempts deferred because the surface had no size."),
		}),
		DriverState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "driver_state",
			Help:      help("0 uninitialized, 1 waiting for size, 2 running."),
		}),
		FeedRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_refreshes_total",
			Help:      help("Weather refreshes by source and outcome."),
		}, []string{"source", "outcome"}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_total",
			Help:      help("Weather cache lookups by result."),
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FramesTotal,
		m.Particles,
		m.BurstsTotal,
		m.ResetsTotal,
		m.FrameDuration,
		m.InitRetries,
		m.DriverState,
		m.FeedRefreshes,
		m.FeedCache,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry registers all metrics with reg
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
