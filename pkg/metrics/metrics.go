// Package metrics exposes Prometheus metrics for the endpoint service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the endpoint service.
type Metrics struct {
	// Offline analysis metrics
	AnalysesTotal    prometheus.Counter
	AnalysisFailures prometheus.Counter
	AnalysisDuration prometheus.Histogram
	IntervalsFound   prometheus.Histogram

	// Streaming session metrics
	ActiveSessions  prometheus.Gauge
	SessionsCreated prometheus.Counter
	ChunksSpeech    prometheus.Counter
	ChunksSilence   prometheus.Counter

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPErrors   *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "endpointer_analyses_total",
			Help: "Total number of offline endpoint analyses performed",
		}),
		AnalysisFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "endpointer_analysis_failures_total",
			Help: "Total number of failed endpoint analyses",
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "endpointer_analysis_duration_seconds",
			Help:    "Wall time spent per endpoint analysis",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		IntervalsFound: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "endpointer_intervals_found",
			Help:    "Number of speech intervals found per analysis",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "endpointer_active_sessions",
			Help: "Number of active streaming sessions",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "endpointer_sessions_created_total",
			Help: "Total number of streaming sessions created",
		}),
		ChunksSpeech: promauto.NewCounter(prometheus.CounterOpts{
			Name: "endpointer_chunks_speech_total",
			Help: "Streamed chunks classified as speech",
		}),
		ChunksSilence: promauto.NewCounter(prometheus.CounterOpts{
			Name: "endpointer_chunks_silence_total",
			Help: "Streamed chunks classified as silence",
		}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "endpointer_http_requests_total",
			Help: "HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "endpointer_http_errors_total",
			Help: "HTTP errors by endpoint",
		}, []string{"endpoint"}),
	}
}
