// Package metrics exposes Prometheus counters and histograms for scans.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwaldner/strikescan/internal/fetcher"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/models"
)

const namespace = "strikescan"

// Metrics holds the scan collectors. It observes fetches, launches and
// pipeline outcomes.
type Metrics struct {
	// pipeline outcomes by outcome ("success"/"failure") and stage
	PipelineOutcomes *prometheus.CounterVec
	// pipeline wall time
	PipelineDuration prometheus.Histogram

	// fetch timing by mode
	FetchDuration *prometheus.HistogramVec
	// fetch failures by kind
	FetchErrors *prometheus.CounterVec

	// pipelines launched by the scheduler
	Launches prometheus.Counter
}

// New creates the metric set
func New() *Metrics {
	return &Metrics{
		PipelineOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_outcomes_total",
			Help:      "Finished ticker pipelines",
		}, []string{"outcome", "stage"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Ticker pipeline duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"mode"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed page fetches",
		}, []string{"kind"}),
		Launches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "Ticker pipelines launched",
		}),
	}
}

// Register registers all collectors on reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.PipelineOutcomes,
		m.PipelineDuration,
		m.FetchDuration,
		m.FetchErrors,
		m.Launches,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error.Printf("❌ Failed to register metric: %v", err)
			return err
		}
	}
	logger.Debug.Printf("📈 Metrics registered")
	return nil
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveFetch records one fetch
func (m *Metrics) ObserveFetch(mode string, fm fetcher.FetchMetrics) {
	m.FetchDuration.WithLabelValues(mode).Observe(fm.Duration.Seconds())
	if fm.Kind != "" {
		m.FetchErrors.WithLabelValues(string(fm.Kind)).Inc()
	}
}

// ObserveLaunch records one pipeline launch
func (m *Metrics) ObserveLaunch(string) {
	m.Launches.Inc()
}

// ObserveOutcome records one finished pipeline
func (m *Metrics) ObserveOutcome(o models.Outcome, elapsed time.Duration) {
	m.PipelineDuration.Observe(elapsed.Seconds())
	if o.Succeeded() {
		m.PipelineOutcomes.WithLabelValues("success", "Done").Inc()
		return
	}
	stage := "unknown"
	if o.Failure != nil {
		stage = o.Failure.Stage
	}
	m.PipelineOutcomes.WithLabelValues("failure", stage).Inc()
}
