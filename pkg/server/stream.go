package server

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/audiolab-ai/endpointer/pkg/audio"
	"github.com/audiolab-ai/endpointer/pkg/vad"
)

// maxStreamSamples bounds per-session buffering (10 minutes at 16 kHz).
const maxStreamSamples = 10 * 60 * 16000

// streamEvent is the JSON message sent to streaming clients.
type streamEvent struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Offset    float64        `json:"offset_s"`
	PreRoll   string         `json:"pre_roll,omitempty"` // base64 PCM16, speech_started only
	Intervals []vad.Interval `json:"intervals,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// streamSession holds the state of one WebSocket classification session.
// Binary messages carry little-endian PCM16 chunks; each chunk is
// classified against the fixed stream reference. The text commands
// "flush" (run the offline pass over everything received) and "reset"
// (drop buffered audio and state) are supported.
type streamSession struct {
	id       string
	conn     *websocket.Conn
	online   *vad.SignalVAD
	offline  vad.Segmenter
	preRoll  *audio.SampleRing
	buffer   []float64
	offset   int // samples consumed so far
	speaking bool
}

// handleStream upgrades the connection and runs the session read loop.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[VADStream] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	online, err := vad.NewSignalVAD(s.cfg.streamVADConfig())
	if err != nil {
		log.Printf("[VADStream] Failed to create online analyzer: %v", err)
		return
	}

	sess := &streamSession{
		id:      uuid.NewString(),
		conn:    conn,
		online:  online,
		offline: s.seg,
		preRoll: audio.NewSampleRing(s.cfg.SampleRate, s.cfg.PreRollMs),
	}
	if s.m != nil {
		s.m.SessionsCreated.Inc()
		s.m.ActiveSessions.Inc()
		defer s.m.ActiveSessions.Dec()
	}
	log.Printf("[VADStream] Session %s started", sess.id)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[VADStream] Session %s read error: %v", sess.id, err)
			}
			break
		}

		switch msgType {
		case websocket.BinaryMessage:
			s.handleChunk(sess, data)
		case websocket.TextMessage:
			s.handleCommand(sess, string(data))
		}
	}
	log.Printf("[VADStream] Session %s closed", sess.id)
}

// handleChunk classifies one PCM chunk and emits speech transitions.
func (s *Server) handleChunk(sess *streamSession, data []byte) {
	samples := audio.PCMBytesToFloat(data)
	if len(samples) == 0 {
		return
	}

	speech, err := sess.online.ClassifyChunk(samples)
	if err != nil {
		sess.send(streamEvent{Type: "error", SessionID: sess.id, Error: err.Error()})
		return
	}
	if s.m != nil {
		if speech {
			s.m.ChunksSpeech.Inc()
		} else {
			s.m.ChunksSilence.Inc()
		}
	}

	offset := float64(sess.offset) / float64(s.cfg.SampleRate)
	if speech && !sess.speaking {
		sess.speaking = true
		sess.send(streamEvent{
			Type:      "speech_started",
			SessionID: sess.id,
			Offset:    offset,
			PreRoll:   base64.StdEncoding.EncodeToString(audio.FloatToPCMBytes(sess.preRoll.ReadAll())),
		})
	} else if !speech && sess.speaking {
		sess.speaking = false
		sess.send(streamEvent{Type: "speech_stopped", SessionID: sess.id, Offset: offset})
	}

	sess.preRoll.Write(samples)
	sess.offset += len(samples)
	if len(sess.buffer) < maxStreamSamples {
		sess.buffer = append(sess.buffer, samples...)
	}
}

// handleCommand executes a text command from the client.
func (s *Server) handleCommand(sess *streamSession, cmd string) {
	switch cmd {
	case "flush":
		if len(sess.buffer) == 0 {
			sess.send(streamEvent{Type: "endpoints", SessionID: sess.id, Intervals: []vad.Interval{}})
			return
		}
		intervals, err := sess.offline.SpeechEndpoints(sess.buffer, s.cfg.SampleRate)
		if err != nil {
			sess.send(streamEvent{Type: "error", SessionID: sess.id, Error: err.Error()})
			return
		}
		sess.send(streamEvent{
			Type:      "endpoints",
			SessionID: sess.id,
			Offset:    float64(sess.offset) / float64(s.cfg.SampleRate),
			Intervals: intervals,
		})
	case "reset":
		sess.buffer = nil
		sess.offset = 0
		sess.speaking = false
		sess.preRoll.Clear()
		sess.send(streamEvent{Type: "reset", SessionID: sess.id})
	default:
		sess.send(streamEvent{Type: "error", SessionID: sess.id, Error: fmt.Sprintf("unknown command %q", cmd)})
	}
}

// send writes an event to the client. Write errors are logged only; the
// read loop notices the broken connection and terminates the session.
func (sess *streamSession) send(ev streamEvent) {
	if err := sess.conn.WriteJSON(ev); err != nil {
		log.Printf("[VADStream] Session %s write error: %v", sess.id, err)
	}
}
