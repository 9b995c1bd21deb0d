// Package telemetry decorates pipeline ports with Prometheus metrics and
// OpenTelemetry spans. The core services never import it; the composition
// root wraps adapters and services before handing them out.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

// TracerName is the instrumentation scope of every span in the pipeline.
const TracerName = "sercha-pdf/pipeline"

var tracer = otel.Tracer(TracerName)

// Search outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the pipeline collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	documentsIngested *prometheus.CounterVec
	chunksStored      prometheus.Counter
	searches          *prometheus.CounterVec
	embedDuration     prometheus.Histogram
	storeOpDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry. Process and Go
// runtime collectors are included so /metrics is useful on its own.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documentsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sercha_pdf_documents_ingested_total",
				Help: "Documents processed by ingestion, by final status",
			},
			[]string{"status"},
		),
		chunksStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sercha_pdf_chunks_stored_total",
				Help: "Chunks written to the vector store",
			},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sercha_pdf_searches_total",
				Help: "Search requests by outcome",
			},
			[]string{"outcome"},
		),
		embedDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sercha_pdf_embed_duration_seconds",
				Help:    "Latency of embedding calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
		),
		storeOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sercha_pdf_store_op_duration_seconds",
				Help:    "Latency of vector store operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(
		m.documentsIngested,
		m.chunksStored,
		m.searches,
		m.embedDuration,
		m.storeOpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
