// Package server provides the HTTP and WebSocket surface of the endpoint
// service: offline WAV analysis, online streamed classification, health
// and Prometheus metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/audiolab-ai/endpointer/pkg/audio"
	"github.com/audiolab-ai/endpointer/pkg/metrics"
	"github.com/audiolab-ai/endpointer/pkg/trace"
	"github.com/audiolab-ai/endpointer/pkg/vad"
)

// Server is the endpoint detection service.
type Server struct {
	cfg *Config
	seg vad.Segmenter
	m   *metrics.Metrics

	mux        *http.ServeMux
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer creates a Server. A nil segmenter builds the offline analyzer
// from the configuration; a nil metrics set disables instrumentation
// counters but keeps the /metrics endpoint.
func NewServer(cfg *Config, seg vad.Segmenter, m *metrics.Metrics) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if seg == nil {
		v, err := vad.NewSignalVAD(cfg.vadConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create analyzer: %w", err)
		}
		seg = v
	}

	s := &Server{
		cfg: cfg,
		seg: seg,
		m:   m,
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("/v1/endpoints", s.handleEndpoints)
	s.mux.HandleFunc("/v1/stream", s.handleStream)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	return s, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[VADServer] Listening on %s", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// endpointsResponse is the JSON body returned by /v1/endpoints.
type endpointsResponse struct {
	DurationS  float64        `json:"duration_s"`
	SampleRate int            `json:"sample_rate"`
	Intervals  []vad.Interval `json:"intervals"`
}

// errorResponse is the JSON body returned on request failures.
type errorResponse struct {
	Error string `json:"error"`
}

// handleEndpoints runs offline endpoint detection over an uploaded mono
// 16-bit PCM WAV body and returns the speech intervals in seconds.
func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "/v1/endpoints", http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.writeError(w, "/v1/endpoints", http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}

	samples, sampleRate, err := audio.DecodeWAV(body)
	if err != nil {
		s.writeError(w, "/v1/endpoints", http.StatusBadRequest, fmt.Errorf("invalid WAV payload: %w", err))
		return
	}
	signal := audio.SamplesToFloat(samples)

	_, span := trace.StartSpan(r.Context(), "vad.speech_endpoints")
	span.SetAttributes(trace.AudioAttrs(len(signal), sampleRate)...)
	defer span.End()

	start := time.Now()
	intervals, err := s.seg.SpeechEndpoints(signal, sampleRate)
	if err != nil {
		trace.RecordError(span, err)
		if s.m != nil {
			s.m.AnalysisFailures.Inc()
		}
		s.writeError(w, "/v1/endpoints", http.StatusUnprocessableEntity, fmt.Errorf("analysis failed: %w", err))
		return
	}
	if s.m != nil {
		s.m.AnalysesTotal.Inc()
		s.m.AnalysisDuration.Observe(time.Since(start).Seconds())
		s.m.IntervalsFound.Observe(float64(len(intervals)))
		s.m.HTTPRequests.WithLabelValues("/v1/endpoints", "200").Inc()
	}

	s.writeJSON(w, http.StatusOK, endpointsResponse{
		DurationS:  float64(len(signal)) / float64(sampleRate),
		SampleRate: sampleRate,
		Intervals:  intervals,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[VADServer] Failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, err error) {
	log.Printf("[VADServer] %s: %v", endpoint, err)
	if s.m != nil {
		s.m.HTTPErrors.WithLabelValues(endpoint).Inc()
		s.m.HTTPRequests.WithLabelValues(endpoint, fmt.Sprintf("%d", status)).Inc()
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
