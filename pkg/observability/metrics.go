// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the transcript pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for the pipeline.
type PipelineMetrics struct {
	// Item metrics
	ItemsProcessedTotal *prometheus.CounterVec
	ProcessingSeconds   *prometheus.HistogramVec

	// Batch metrics
	BatchesTotal    prometheus.Counter
	BatchSizeItems  prometheus.Histogram

	// Summarization metrics
	LLMTokensTotal  *prometheus.CounterVec
	ExtractionTotal *prometheus.CounterVec
}

// DefaultPipelineMetrics creates metrics on the default registerer.
func DefaultPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetrics(prometheus.DefaultRegisterer)
}

// NewPipelineMetrics creates a new set of pipeline metrics.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		ItemsProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_items_processed_total",
				Help: "Total transcripts processed by outcome",
			},
			[]string{"status", "error_kind"},
		),
		ProcessingSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recap_processing_seconds",
				Help:    "Per-item processing latency by stage",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		BatchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recap_batches_total",
				Help: "Total batch runs",
			},
		),
		BatchSizeItems: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recap_batch_size_items",
				Help:    "Items per batch run",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
		LLMTokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_llm_tokens_total",
				Help: "Summarization-service token consumption",
			},
			[]string{"kind"},
		),
		ExtractionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_extraction_total",
				Help: "Extractions by provenance (model, fallback, mixed)",
			},
			[]string{"source"},
		),
	}
}

// RecordItem records one processed item.
func (m *PipelineMetrics) RecordItem(status, errorKind string, seconds float64) {
	m.ItemsProcessedTotal.WithLabelValues(status, errorKind).Inc()
	m.ProcessingSeconds.WithLabelValues("pipeline").Observe(seconds)
}

// RecordTokens records summarization token usage.
func (m *PipelineMetrics) RecordTokens(prompt, completion int) {
	if prompt > 0 {
		m.LLMTokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	}
	if completion > 0 {
		m.LLMTokensTotal.WithLabelValues("completion").Add(float64(completion))
	}
}
