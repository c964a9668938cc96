package audio

import "sync"

// SampleRing is a fixed-capacity circular buffer of normalized samples.
// Streaming sessions use it to retain the most recent audio so the pre-roll
// just before a speech onset can be replayed.
type SampleRing struct {
	data     []float64
	writePos int
	size     int
	mu       sync.Mutex
}

// NewSampleRing creates a ring holding durationMs of audio at sampleRate.
func NewSampleRing(sampleRate, durationMs int) *SampleRing {
	capacity := sampleRate * durationMs / 1000
	if capacity < 1 {
		capacity = 1
	}
	return &SampleRing{data: make([]float64, capacity)}
}

// Write appends samples, overwriting the oldest data once full.
func (r *SampleRing) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.data)
	if len(samples) >= capacity {
		copy(r.data, samples[len(samples)-capacity:])
		r.writePos = 0
		r.size = capacity
		return
	}

	n := copy(r.data[r.writePos:], samples)
	if n < len(samples) {
		copy(r.data, samples[n:])
	}
	r.writePos = (r.writePos + len(samples)) % capacity
	r.size += len(samples)
	if r.size > capacity {
		r.size = capacity
	}
}

// ReadAll returns the buffered samples in chronological order without
// modifying the ring.
func (r *SampleRing) ReadAll() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil
	}
	out := make([]float64, r.size)
	if r.size < len(r.data) {
		copy(out, r.data[:r.size])
	} else {
		n := copy(out, r.data[r.writePos:])
		copy(out[n:], r.data[:r.writePos])
	}
	return out
}

// Len returns the number of buffered samples.
func (r *SampleRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Clear empties the ring.
func (r *SampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writePos = 0
	r.size = 0
}
