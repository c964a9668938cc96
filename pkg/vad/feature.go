package vad

import "fmt"

// DefaultSilenceThresholdDB is the decibel margin below the reference at
// which a frame is considered silence. 35 works well for clean studio
// recordings, 25 for noisy material.
const DefaultSilenceThresholdDB = 25.0

// DefaultNumBands is the expected band dimension of feature frames.
const DefaultNumBands = 80

// FeatureVADConfig holds configuration for creating a FeatureVAD.
type FeatureVADConfig struct {
	// GlobalRef is the reference power used when a caller requests
	// global-reference classification. Zero means unset; classification
	// then falls back to the input's own maximum power.
	GlobalRef float64

	// SilenceThresholdDB is the margin below the reference treated as
	// silence. Defaults to DefaultSilenceThresholdDB.
	SilenceThresholdDB float64

	// NumBands is the required band count per feature frame.
	// Defaults to DefaultNumBands.
	NumBands int
}

// FeatureVAD classifies frames of normalized spectral-band features.
// It is stateless after construction; concurrent calls are safe.
type FeatureVAD struct {
	globalRef float64
	threshold float64
	numBands  int
}

// NewFeatureVAD creates a FeatureVAD, applying defaults for unset fields.
func NewFeatureVAD(cfg FeatureVADConfig) *FeatureVAD {
	if cfg.SilenceThresholdDB == 0 {
		cfg.SilenceThresholdDB = DefaultSilenceThresholdDB
	}
	if cfg.NumBands == 0 {
		cfg.NumBands = DefaultNumBands
	}
	return &FeatureVAD{
		globalRef: cfg.GlobalRef,
		threshold: cfg.SilenceThresholdDB,
		numBands:  cfg.NumBands,
	}
}

// ClassifyFrame reports whether a single feature frame is speech. With
// useGlobalRef the configured reference power is used; otherwise the frame
// is measured against its own power.
func (v *FeatureVAD) ClassifyFrame(frame []float64, useGlobalRef bool) (bool, error) {
	if len(frame) != v.numBands {
		return false, fmt.Errorf("expected %d bands per frame, got %d", v.numBands, len(frame))
	}
	power := framePower(frame)
	ref := power
	if useGlobalRef {
		if v.globalRef == 0 {
			return false, fmt.Errorf("global reference requested but none configured")
		}
		ref = v.globalRef
	}
	return PowerToDB(power, ref) > -v.threshold, nil
}

// SpeechSpans returns the frame-index spans of mels classified as speech,
// inclusive on both ends. The reference power is shared by all frames: the
// configured global reference with useGlobalRef, otherwise the maximum
// power across the whole matrix. Single-frame blips are dropped.
func (v *FeatureVAD) SpeechSpans(mels [][]float64, useGlobalRef bool) ([]Span, error) {
	if len(mels) == 0 {
		return nil, nil
	}
	powers := make([]float64, len(mels))
	for i, frame := range mels {
		if len(frame) != v.numBands {
			return nil, fmt.Errorf("frame %d: expected %d bands, got %d", i, v.numBands, len(frame))
		}
		powers[i] = framePower(frame)
	}

	ref := maxPower(powers)
	if useGlobalRef {
		if v.globalRef == 0 {
			return nil, fmt.Errorf("global reference requested but none configured")
		}
		ref = v.globalRef
	}

	mask := thresholdMask(powersToDB(powers, ref), v.threshold, Speech)
	return filterSpans(ScanRuns(mask), minFrameRun), nil
}
