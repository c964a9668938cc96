package vad

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSegmenter(t *testing.T) {
	t.Run("default returns no intervals", func(t *testing.T) {
		mock := NewMockSegmenter()

		intervals, err := mock.SpeechEndpoints([]float64{0.1, 0.2}, 16000)
		require.NoError(t, err)
		assert.Empty(t, intervals)
	})

	t.Run("records calls", func(t *testing.T) {
		mock := NewMockSegmenter()

		mock.SpeechEndpoints(make([]float64, 100), 16000)
		mock.SpeechEndpoints(make([]float64, 200), 8000)

		assert.Equal(t, 2, mock.CallCount())
		assert.Equal(t, SegmenterCall{NumSamples: 100, SampleRate: 16000}, mock.Calls[0])
		assert.Equal(t, SegmenterCall{NumSamples: 200, SampleRate: 8000}, mock.Calls[1])
	})

	t.Run("custom function", func(t *testing.T) {
		mock := NewMockSegmenter()
		mock.EndpointsFunc = func(signal []float64, sampleRate int) ([]Interval, error) {
			return nil, fmt.Errorf("boom")
		}

		_, err := mock.SpeechEndpoints(nil, 16000)
		assert.Error(t, err)
	})
}

func TestMockSegmenterWithIntervals(t *testing.T) {
	want := []Interval{{Start: 0.5, End: 1.5}}
	mock := NewMockSegmenterWithIntervals(want)

	got, err := mock.SpeechEndpoints(make([]float64, 10), 16000)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = mock.SpeechEndpoints(make([]float64, 20), 16000)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 2, mock.CallCount())
}
