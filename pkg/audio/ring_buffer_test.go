package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(start, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(start + i)
	}
	return out
}

func TestSampleRingPartialFill(t *testing.T) {
	r := NewSampleRing(1000, 10) // capacity 10 samples

	r.Write(ramp(0, 4))
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, ramp(0, 4), r.ReadAll())
}

func TestSampleRingWrapAround(t *testing.T) {
	r := NewSampleRing(1000, 10)

	r.Write(ramp(0, 8))
	r.Write(ramp(8, 6))

	// 14 samples written into capacity 10: the oldest 4 are gone.
	assert.Equal(t, 10, r.Len())
	assert.Equal(t, ramp(4, 10), r.ReadAll())
}

func TestSampleRingOversizedWrite(t *testing.T) {
	r := NewSampleRing(1000, 10)

	r.Write(ramp(0, 25))
	assert.Equal(t, 10, r.Len())
	assert.Equal(t, ramp(15, 10), r.ReadAll())
}

func TestSampleRingClear(t *testing.T) {
	r := NewSampleRing(1000, 10)
	r.Write(ramp(0, 5))
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.ReadAll())

	// Usable after clearing.
	r.Write(ramp(0, 3))
	require.Equal(t, ramp(0, 3), r.ReadAll())
}

func TestSampleRingMinimumCapacity(t *testing.T) {
	r := NewSampleRing(1000, 0)
	r.Write([]float64{1, 2, 3})
	assert.Equal(t, []float64{3}, r.ReadAll())
}
