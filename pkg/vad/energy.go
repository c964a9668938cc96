// Package vad provides energy-based voice activity detection.
//
// Two analyzers share one segmentation skeleton: FeatureVAD consumes
// per-frame spectral-band features (e.g. mel filterbank outputs) and
// SignalVAD consumes a raw waveform. Both derive per-frame decibel levels,
// threshold them against a reference power, and consolidate the per-frame
// decisions into contiguous intervals with minimum-duration filtering.
//
// Usage:
//
//	v, err := vad.NewSignalVAD(vad.SignalVADConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	intervals, err := v.SpeechEndpoints(signal, 16000)
package vad

import "math"

// powerFloor guards decibel conversion against log(0).
const powerFloor = 1e-10

// Rescaling contract for normalized dB-like feature values. The constants
// must match the feature extractor that produced the values; changing them
// breaks the round trip back to linear energy.
const (
	refLevelDB = 20.0
	minLevelDB = -100.0
)

// PowerToDB converts a linear power value to decibels relative to ref.
// Values at or below powerFloor saturate at the floor instead of producing
// negative infinity. No upper clipping is applied; thresholding is the
// caller's concern.
func PowerToDB(value, ref float64) float64 {
	return 10 * (math.Log10(math.Max(value, powerFloor)) - math.Log10(math.Max(ref, powerFloor)))
}

// powersToDB converts a sequence of linear power values to decibels against
// a single shared reference.
func powersToDB(powers []float64, ref float64) []float64 {
	db := make([]float64, len(powers))
	for i, p := range powers {
		db[i] = PowerToDB(p, ref)
	}
	return db
}

// framePower reconstructs a linear energy measure from one frame of
// normalized band features in [0, 1] and sums it across the band dimension.
// Out-of-range values are clipped before rescaling.
func framePower(frame []float64) float64 {
	var sum float64
	for _, v := range frame {
		clipped := math.Min(math.Max(v, 0), 1)*(-minLevelDB) + minLevelDB
		sum += math.Pow(10, (clipped+refLevelDB)*0.05)
	}
	return sum
}

// maxPower returns the largest value in powers. powers must be non-empty.
func maxPower(powers []float64) float64 {
	m := math.Inf(-1)
	for _, p := range powers {
		if p > m {
			m = p
		}
	}
	return m
}
