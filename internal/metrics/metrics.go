package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes.
const (
	OutcomeStructured = "structured"
	OutcomeFenced     = "fenced"
	OutcomeFailed     = "failed"
)

var (
	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supercv_generation_calls_total",
			Help: "Total number of generation calls by task and decode outcome",
		},
		[]string{"task", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supercv_generation_duration_seconds",
			Help:    "Duration of generation calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"task"},
	)

	DocumentExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supercv_document_extractions_total",
			Help: "Total number of document text extractions by format and result",
		},
		[]string{"format", "result"},
	)

	JobContextResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supercv_job_context_resolutions_total",
			Help: "Total number of job context resolutions by source",
		},
		[]string{"source"},
	)

	DegradedResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supercv_degraded_responses_total",
			Help: "Total number of responses that carry a default object in place of a generation result",
		},
		[]string{"operation", "part"},
	)
)
