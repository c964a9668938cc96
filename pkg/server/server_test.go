package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolab-ai/endpointer/pkg/audio"
	"github.com/audiolab-ai/endpointer/pkg/metrics"
	"github.com/audiolab-ai/endpointer/pkg/vad"
)

// Registered once: promauto panics on duplicate registration.
var testMetrics = metrics.New()

func newTestServer(t *testing.T, seg vad.Segmenter) *Server {
	t.Helper()
	s, err := NewServer(DefaultConfig(), seg, testMetrics)
	require.NoError(t, err)
	return s
}

func encodeSilentWAV(t *testing.T, seconds float64) []byte {
	t.Helper()
	samples := make([]int16, int(seconds*16000))
	data, err := audio.EncodeWAV(samples, 16000)
	require.NoError(t, err)
	return data
}

func TestHandleEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/endpoints", bytes.NewReader(encodeSilentWAV(t, 0.1)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp endpointsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 16000, resp.SampleRate)
	assert.InDelta(t, 0.1, resp.DurationS, 1e-9)
	// Silence-only audio falls back to one full-clip speech interval.
	require.Len(t, resp.Intervals, 1)
	assert.InDelta(t, 0.0, resp.Intervals[0].Start, 1e-9)
	assert.InDelta(t, 0.1, resp.Intervals[0].End, 1e-9)
}

func TestHandleEndpointsUsesSegmenter(t *testing.T) {
	want := []vad.Interval{{Start: 0.5, End: 1.25}}
	mock := vad.NewMockSegmenterWithIntervals(want)
	s := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/endpoints", bytes.NewReader(encodeSilentWAV(t, 2)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp endpointsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, want, resp.Intervals)

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, 32000, mock.Calls[0].NumSamples)
	assert.Equal(t, 16000, mock.Calls[0].SampleRate)
}

func TestHandleEndpointsMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/endpoints", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleEndpointsInvalidPayload(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/endpoints", strings.NewReader("not a wav"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleEndpointsAnalysisFailure(t *testing.T) {
	mock := vad.NewMockSegmenter()
	mock.EndpointsFunc = func(signal []float64, sampleRate int) ([]vad.Interval, error) {
		return nil, fmt.Errorf("boom")
	}
	s := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/endpoints", bytes.NewReader(encodeSilentWAV(t, 0.1)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func dialStream(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func chunk(value float64, n int) []byte {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = value
	}
	return audio.FloatToPCMBytes(samples)
}

func TestStreamSpeechTransitions(t *testing.T) {
	conn := dialStream(t, newTestServer(t, nil))

	// A loud chunk sits at −6 dB against the full-scale stream reference.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, chunk(0.5, 1600)))

	var ev streamEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "speech_started", ev.Type)
	assert.NotEmpty(t, ev.SessionID)
	assert.InDelta(t, 0.0, ev.Offset, 1e-9)

	// Digital silence ends the speech segment at the 0.1 s mark.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, chunk(0, 1600)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "speech_stopped", ev.Type)
	assert.InDelta(t, 0.1, ev.Offset, 1e-9)
}

func TestStreamFlush(t *testing.T) {
	conn := dialStream(t, newTestServer(t, nil))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, chunk(0.5, 1600)))
	var ev streamEvent
	require.NoError(t, conn.ReadJSON(&ev)) // speech_started

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, chunk(0, 1600)))
	require.NoError(t, conn.ReadJSON(&ev)) // speech_stopped

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("flush")))
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "endpoints", ev.Type)
	// 0.1 s of silence is under the minimum silence duration, so the
	// whole buffered stream is one speech interval.
	require.Len(t, ev.Intervals, 1)
	assert.InDelta(t, 0.0, ev.Intervals[0].Start, 1e-9)
	assert.InDelta(t, 0.2, ev.Intervals[0].End, 1e-9)
}

func TestStreamFlushEmpty(t *testing.T) {
	conn := dialStream(t, newTestServer(t, nil))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("flush")))
	var ev streamEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "endpoints", ev.Type)
	assert.Empty(t, ev.Intervals)
}

func TestStreamReset(t *testing.T) {
	conn := dialStream(t, newTestServer(t, nil))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, chunk(0.5, 1600)))
	var ev streamEvent
	require.NoError(t, conn.ReadJSON(&ev)) // speech_started

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("reset")))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "reset", ev.Type)

	// After a reset the same loud chunk triggers a fresh onset at zero.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, chunk(0.5, 1600)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "speech_started", ev.Type)
	assert.InDelta(t, 0.0, ev.Offset, 1e-9)
}

func TestStreamUnknownCommand(t *testing.T) {
	conn := dialStream(t, newTestServer(t, nil))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("bogus")))
	var ev streamEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "error", ev.Type)
	assert.Contains(t, ev.Error, "bogus")
}
