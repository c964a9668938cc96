package vad

// Segmenter segments a waveform into speech intervals.
// This interface allows for mock implementations in testing.
type Segmenter interface {
	// SpeechEndpoints returns the speech intervals of signal in seconds,
	// ordered by start time and non-overlapping.
	SpeechEndpoints(signal []float64, sampleRate int) ([]Interval, error)
}

// Ensure SignalVAD implements Segmenter at compile time.
var _ Segmenter = (*SignalVAD)(nil)
