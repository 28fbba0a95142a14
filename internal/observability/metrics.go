package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// detection pipeline.
type Metrics struct {
	RunsTotal       prometheus.Counter
	RunErrors       prometheus.Counter
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge

	// Last-run detection outcomes.
	StationsLoaded    prometheus.Gauge
	StationEvents     prometheus.Gauge
	CatalogEvents     prometheus.Gauge
	CatalogsPublished prometheus.Counter

	// Degraded-path counters.
	DegenerateThresholds prometheus.Counter
	FitFailures          prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunErrors,
		m.RunDuration,
		m.PipelineRunning,
		m.StationsLoaded,
		m.StationEvents,
		m.CatalogEvents,
		m.CatalogsPublished,
		m.DegenerateThresholds,
		m.FitFailures,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slowslip",
			Name:      "detection_runs_total",
			Help:      "Total detection runs attempted.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slowslip",
			Name:      "detection_run_errors_total",
			Help:      "Detection runs that failed before producing a catalog.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slowslip",
			Name:      "detection_run_duration_seconds",
			Help:      "Duration of a complete load-detect-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slowslip",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		StationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slowslip",
			Name:      "stations_loaded",
			Help:      "Stations in the network processed by the last run.",
		}),
		StationEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slowslip",
			Name:      "station_events",
			Help:      "Per-station events surviving the neighbor filter in the last run.",
		}),
		CatalogEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slowslip",
			Name:      "catalog_events",
			Help:      "Network-wide events in the last published catalog.",
		}),
		CatalogsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slowslip",
			Name:      "catalogs_published_total",
			Help:      "Catalogs successfully written to the sink topic.",
		}),
		DegenerateThresholds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slowslip",
			Name:      "degenerate_thresholds_total",
			Help:      "Stations skipped because no detection threshold could be derived.",
		}),
		FitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slowslip",
			Name:      "fit_failures_total",
			Help:      "Displacement fits abandoned (too few observations or singular).",
		}),
	}
}
