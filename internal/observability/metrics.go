package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// screening service.
type Metrics struct {
	ScreeningRuns   *prometheus.CounterVec // labels: outcome={completed,failed}
	ParcelsFetched  prometheus.Counter
	ParcelsScreened prometheus.Counter
	RecordsSkipped  prometheus.Counter
	ParcelsEligible prometheus.Counter
	FallbackUses    prometheus.Counter
	PipelineRunning prometheus.Gauge

	FetchDuration prometheus.Histogram
	RunDuration   prometheus.Histogram

	// Soil enrichment metrics.
	SoilLookups *prometheus.CounterVec // labels: outcome={success,error,empty}
	SoilCache   *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all screening metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScreeningRuns,
		m.ParcelsFetched,
		m.ParcelsScreened,
		m.RecordsSkipped,
		m.ParcelsEligible,
		m.FallbackUses,
		m.PipelineRunning,
		m.FetchDuration,
		m.RunDuration,
		m.SoilLookups,
		m.SoilCache,
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
		ScreeningRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "runs_total",
			Help:      "Screening runs by outcome.",
		}, []string{"outcome"}),
		ParcelsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "parcels_fetched_total",
			Help:      "Raw parcel records fetched from sources.",
		}),
		ParcelsScreened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "parcels_screened_total",
			Help:      "Parcels that completed normalize-evaluate-score.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "records_skipped_total",
			Help:      "Raw records excluded as structurally invalid.",
		}),
		ParcelsEligible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "parcels_eligible_total",
			Help:      "Screened parcels that passed all program requirements.",
		}),
		FallbackUses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "fallback_uses_total",
			Help:      "Runs that substituted synthetic data after a live fetch failure.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parcel_screening",
			Name:      "pipeline_running",
			Help:      "1 while a screening run is in flight.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parcel_screening",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the parcel fetch stage, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parcel_screening",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete screening run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SoilLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "soil_lookups_total",
			Help:      "Soil attribute lookups by outcome.",
		}, []string{"outcome"}),
		SoilCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parcel_screening",
			Name:      "soil_cache_total",
			Help:      "Soil cache lookups by result.",
		}, []string{"result"}),
	}
}
