package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// IngestionMetrics tracks vision calls and listing image uploads.
type IngestionMetrics struct {
	extractDuration *prometheus.HistogramVec
	extractions     *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	compensations   prometheus.Counter
}

// NewIngestionMetrics registers the ingestion metrics on the provided registerer.
func NewIngestionMetrics(reg prometheus.Registerer) *IngestionMetrics {
	if reg == nil {
		return &IngestionMetrics{}
	}
	extractDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_extraction_duration_seconds",
		Help:    "Latency of vision model calls in seconds.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"kind"})
	extractions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_extractions_total",
		Help: "Vision extraction attempts by kind and outcome.",
	}, []string{"kind", "outcome"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_image_uploads_total",
		Help: "Listing image uploads by outcome.",
	}, []string{"outcome"})
	compensations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listing_upload_compensations_total",
		Help: "Listing creations that removed already uploaded blobs after a failure.",
	})
	reg.MustRegister(extractDuration, extractions, uploads, compensations)
	return &IngestionMetrics{
		extractDuration: extractDuration,
		extractions:     extractions,
		uploads:         uploads,
		compensations:   compensations,
	}
}

// ObserveExtraction records one vision call.
func (m *IngestionMetrics) ObserveExtraction(kind, outcome string, duration time.Duration) {
	if m == nil || m.extractions == nil {
		return
	}
	kind = normalizeLabel(kind)
	m.extractions.WithLabelValues(kind, normalizeLabel(outcome)).Inc()
	m.extractDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncUpload counts a single blob upload.
func (m *IngestionMetrics) IncUpload(outcome string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCompensation counts a create call that had to clean up its blobs.
func (m *IngestionMetrics) IncCompensation() {
	if m == nil || m.compensations == nil {
		return
	}
	m.compensations.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
