package vad

import (
	"fmt"
	"math"

	"github.com/audiolab-ai/endpointer/pkg/audio"
)

// ReferenceMode selects the power reference for decibel conversion.
type ReferenceMode int

const (
	// RefLocalMax uses the maximum short-time power observed in the
	// current input.
	RefLocalMax ReferenceMode = iota
	// RefFixed uses the scalar configured in SignalVADConfig.RefPower.
	RefFixed
)

// Defaults for SignalVADConfig.
const (
	DefaultFrameLength   = 1024
	DefaultHopLength     = 256
	DefaultMinSilenceDur = 0.75
	DefaultMinSpeechDur  = 0.40
)

// boundaryEpsilon absorbs floating-point rounding when deriving speech
// intervals at the clip edges. Leading or trailing segments shorter than
// this are not emitted.
const boundaryEpsilon = 0.001

// SignalVADConfig holds configuration for creating a SignalVAD.
type SignalVADConfig struct {
	// SilenceThresholdDB is the margin below the reference treated as
	// silence. Defaults to DefaultSilenceThresholdDB.
	SilenceThresholdDB float64

	// FrameLength is the number of samples per analysis window.
	FrameLength int

	// HopLength is the number of samples between window starts.
	HopLength int

	// Reference selects how the reference power is chosen.
	Reference ReferenceMode

	// RefPower is the reference power used with RefFixed.
	RefPower float64

	// MinSilenceDur is the minimum duration in seconds for a silence
	// region to count as a segment boundary.
	MinSilenceDur float64

	// MinSpeechDur is the minimum duration in seconds for a speech
	// interval to be reported.
	MinSpeechDur float64
}

// IsValid validates the configuration.
func (c SignalVADConfig) IsValid() error {
	if c.SilenceThresholdDB < 0 {
		return fmt.Errorf("silence threshold must be non-negative, got %f", c.SilenceThresholdDB)
	}
	if c.FrameLength <= 0 {
		return fmt.Errorf("frame length must be positive, got %d", c.FrameLength)
	}
	if c.HopLength <= 0 {
		return fmt.Errorf("hop length must be positive, got %d", c.HopLength)
	}
	if c.Reference == RefFixed && c.RefPower <= 0 {
		return fmt.Errorf("fixed reference mode requires a positive reference power")
	}
	if c.MinSilenceDur < 0 || c.MinSpeechDur < 0 {
		return fmt.Errorf("minimum durations must be non-negative")
	}
	return nil
}

// SignalVAD segments a raw waveform into silence and speech regions by
// thresholding short-time energy. It is stateless after construction;
// concurrent calls are safe.
type SignalVAD struct {
	cfg SignalVADConfig
}

// NewSignalVAD creates a SignalVAD, applying defaults for unset fields.
func NewSignalVAD(cfg SignalVADConfig) (*SignalVAD, error) {
	if cfg.SilenceThresholdDB == 0 {
		cfg.SilenceThresholdDB = DefaultSilenceThresholdDB
	}
	if cfg.FrameLength == 0 {
		cfg.FrameLength = DefaultFrameLength
	}
	if cfg.HopLength == 0 {
		cfg.HopLength = DefaultHopLength
	}
	if cfg.MinSilenceDur == 0 {
		cfg.MinSilenceDur = DefaultMinSilenceDur
	}
	if cfg.MinSpeechDur == 0 {
		cfg.MinSpeechDur = DefaultMinSpeechDur
	}
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &SignalVAD{cfg: cfg}, nil
}

// Config returns the effective configuration after defaults.
func (v *SignalVAD) Config() SignalVADConfig {
	return v.cfg
}

// SilenceSpans returns the silence regions of signal as inclusive
// sample-index spans. Runs covering a single analysis frame are dropped.
func (v *SignalVAD) SilenceSpans(signal []float64) []Span {
	mask := thresholdMask(v.levels(signal), v.cfg.SilenceThresholdDB, Silence)
	spans := ScanRuns(mask)
	for i := range spans {
		spans[i].Start *= v.cfg.HopLength
		spans[i].End *= v.cfg.HopLength
	}
	return filterSpans(spans, minSampleRun)
}

// SpeechEndpoints segments signal into speech intervals in seconds.
// Silence regions no longer than MinSilenceDur are ignored; if none remain,
// the whole clip is reported as a single speech interval. Otherwise the
// speech intervals are the complement of the silence regions over the clip,
// filtered by MinSpeechDur, ordered by start time and non-overlapping.
func (v *SignalVAD) SpeechEndpoints(signal []float64, sampleRate int) ([]Interval, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	sr := float64(sampleRate)
	dur := float64(len(signal)) / sr

	var silence []Interval
	for _, s := range v.SilenceSpans(signal) {
		if float64(s.End-s.Start) > sr*v.cfg.MinSilenceDur {
			silence = append(silence, Interval{Start: float64(s.Start) / sr, End: float64(s.End) / sr})
		}
	}
	if len(silence) == 0 {
		return []Interval{{Start: 0, End: dur}}, nil
	}

	var speech []Interval
	for _, iv := range complement(silence, dur) {
		if iv.Duration() > v.cfg.MinSpeechDur {
			speech = append(speech, iv)
		}
	}
	return speech, nil
}

// SpeechEndpointsFromFile loads a mono 16-bit PCM WAV file and runs
// SpeechEndpoints on its contents.
func (v *SignalVAD) SpeechEndpointsFromFile(path string) ([]Interval, error) {
	signal, sampleRate, err := audio.LoadWAV(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return v.SpeechEndpoints(signal, sampleRate)
}

// ClassifyChunk reports whether a chunk of streamed samples is speech by
// comparing its mean power against the fixed reference. It requires
// RefFixed: with RefLocalMax the chunk would be its own reference and
// always classify as speech.
func (v *SignalVAD) ClassifyChunk(chunk []float64) (bool, error) {
	if v.cfg.Reference != RefFixed {
		return false, fmt.Errorf("chunk classification requires a fixed reference power")
	}
	if len(chunk) == 0 {
		return false, fmt.Errorf("empty chunk")
	}
	var sum float64
	for _, s := range chunk {
		sum += s * s
	}
	power := sum / float64(len(chunk))
	return PowerToDB(power, v.cfg.RefPower) > -v.cfg.SilenceThresholdDB, nil
}

// levels computes the per-frame decibel levels of the short-time energy.
func (v *SignalVAD) levels(signal []float64) []float64 {
	rms := shortTimeRMS(signal, v.cfg.FrameLength, v.cfg.HopLength)
	powers := make([]float64, len(rms))
	for i, r := range rms {
		powers[i] = r * r
	}
	ref := v.cfg.RefPower
	if v.cfg.Reference == RefLocalMax {
		ref = maxPower(powers)
	}
	return powersToDB(powers, ref)
}

// complement derives the speech intervals between consecutive silence
// intervals over [0, dur]. silence must be non-empty, sorted by start and
// non-overlapping. Leading and trailing segments shorter than
// boundaryEpsilon are rounding artifacts and are not emitted.
func complement(silence []Interval, dur float64) []Interval {
	var speech []Interval
	if silence[0].Start > boundaryEpsilon {
		speech = append(speech, Interval{Start: 0, End: silence[0].Start})
	}
	for i := 0; i < len(silence)-1; i++ {
		speech = append(speech, Interval{Start: silence[i].End, End: silence[i+1].Start})
	}
	if last := silence[len(silence)-1].End; dur-last > boundaryEpsilon {
		speech = append(speech, Interval{Start: last, End: dur})
	}
	return speech
}

// shortTimeRMS computes root-mean-square energy over centered overlapping
// windows. The signal is zero padded by frameLength/2 at both edges, giving
// 1 + len(signal)/hopLength frames.
func shortTimeRMS(signal []float64, frameLength, hopLength int) []float64 {
	half := frameLength / 2
	n := 1 + len(signal)/hopLength
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i*hopLength - half
		var sum float64
		for j := 0; j < frameLength; j++ {
			if idx := start + j; idx >= 0 && idx < len(signal) {
				sum += signal[idx] * signal[idx]
			}
		}
		out[i] = math.Sqrt(sum / float64(frameLength))
	}
	return out
}
