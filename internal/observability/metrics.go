package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_validation"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// validation service.
type Metrics struct {
	ValidationsTotal   *prometheus.CounterVec // labels: outcome={success,missing_input,crs_mismatch,insufficient_data,raster_error,error}
	ValidationDuration prometheus.Histogram
	AUCValue           prometheus.Histogram

	// Sampling metrics.
	SamplesExtracted prometheus.Counter
	DroppedSamples   *prometheus.CounterVec // labels: class={positive,negative}

	// Raster store metrics.
	RasterCache *prometheus.CounterVec // labels: result={hit,miss}

	ServiceReady prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ValidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Completed validation runs by outcome.",
		}, []string{"outcome"}),
		ValidationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Duration of a complete sample-assemble-compute run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		AUCValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "auc_value",
			Help:      "AUC values of successful validation runs.",
			Buckets:   []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
		}),
		SamplesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_extracted_total",
			Help:      "Total observation points sampled against a raster.",
		}),
		DroppedSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_samples_total",
			Help:      "Samples dropped for no-data or out-of-bounds locations, by class.",
		}, []string{"class"}),
		RasterCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raster_cache_total",
			Help:      "Raster store cache lookups by result.",
		}, []string{"result"}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_ready",
			Help:      "1 once the service has completed a validation run.",
		}),
	}

	prometheus.MustRegister(
		m.ValidationsTotal,
		m.ValidationDuration,
		m.AUCValue,
		m.SamplesExtracted,
		m.DroppedSamples,
		m.RasterCache,
		m.ServiceReady,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ValidationsTotal:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "validations_total"}, []string{"outcome"}),
		ValidationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "validation_duration_seconds"}),
		AUCValue:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "auc_value"}),
		SamplesExtracted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "samples_extracted_total"}),
		DroppedSamples:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "dropped_samples_total"}, []string{"class"}),
		RasterCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "raster_cache_total"}, []string{"result"}),
		ServiceReady:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "service_ready"}),
	}
}
