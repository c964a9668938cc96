package vad

import "sync"

// SegmenterCall records the input of one SpeechEndpoints invocation.
type SegmenterCall struct {
	NumSamples int
	SampleRate int
}

// MockSegmenter is a mock implementation of Segmenter for testing.
// It allows customizing the behavior through the EndpointsFunc field.
type MockSegmenter struct {
	// EndpointsFunc is called when SpeechEndpoints is invoked.
	// If nil, an empty interval list is returned.
	EndpointsFunc func(signal []float64, sampleRate int) ([]Interval, error)

	// Calls records all invocations for verification.
	Calls []SegmenterCall

	mu sync.Mutex
}

// NewMockSegmenter creates a new MockSegmenter with default behavior.
func NewMockSegmenter() *MockSegmenter {
	return &MockSegmenter{
		Calls: make([]SegmenterCall, 0),
	}
}

// NewMockSegmenterWithIntervals creates a MockSegmenter that returns a
// fixed interval list.
func NewMockSegmenterWithIntervals(intervals []Interval) *MockSegmenter {
	return &MockSegmenter{
		EndpointsFunc: func(signal []float64, sampleRate int) ([]Interval, error) {
			return intervals, nil
		},
		Calls: make([]SegmenterCall, 0),
	}
}

// SpeechEndpoints implements Segmenter.
func (m *MockSegmenter) SpeechEndpoints(signal []float64, sampleRate int) ([]Interval, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, SegmenterCall{NumSamples: len(signal), SampleRate: sampleRate})
	m.mu.Unlock()

	if m.EndpointsFunc != nil {
		return m.EndpointsFunc(signal, sampleRate)
	}
	return []Interval{}, nil
}

// CallCount returns the number of times SpeechEndpoints was called.
func (m *MockSegmenter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Ensure MockSegmenter implements Segmenter at compile time.
var _ Segmenter = (*MockSegmenter)(nil)
