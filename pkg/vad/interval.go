package vad

import "fmt"

// Direction selects which side of the silence threshold a mask captures.
type Direction int

const (
	// Silence marks frames whose level is below the negated threshold.
	Silence Direction = iota
	// Speech marks frames whose level is above the negated threshold.
	Speech
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Silence:
		return "silence"
	case Speech:
		return "speech"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Span is a contiguous run in discrete units (frame or sample indices).
// Both bounds are inclusive.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Interval is a time range in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Runs whose inclusive width does not exceed these bounds are dropped as
// noise blips. Note the units differ: minFrameRun is in analysis frames,
// minSampleRun in raw samples, so the sample bound is far looser in wall
// time than the frame bound.
const (
	minFrameRun  = 1
	minSampleRun = 1
)

// ScanRuns finds all maximal contiguous runs of true values in mask and
// returns them as inclusive index spans. A conceptual false sentinel sits
// before index 0, so runs touching either boundary of the mask are closed
// correctly. Degenerate runs are not filtered here; callers apply their
// own minimum-length policy.
func ScanRuns(mask []bool) []Span {
	var spans []Span
	start := 0
	prev := false
	for i := 0; i <= len(mask); i++ {
		cur := i < len(mask) && mask[i]
		if cur && !prev {
			start = i
		}
		if prev && !cur {
			spans = append(spans, Span{Start: start, End: i - 1})
		}
		prev = cur
	}
	return spans
}

// thresholdMask classifies per-frame decibel levels against -threshold.
// A level exactly at the boundary belongs to neither direction.
func thresholdMask(db []float64, threshold float64, dir Direction) []bool {
	mask := make([]bool, len(db))
	for i, v := range db {
		switch dir {
		case Silence:
			mask[i] = v < -threshold
		case Speech:
			mask[i] = v > -threshold
		default:
			panic(fmt.Sprintf("vad: unknown direction %d", int(dir)))
		}
	}
	return mask
}

// filterSpans drops spans whose inclusive width does not exceed min.
func filterSpans(spans []Span, min int) []Span {
	var out []Span
	for _, s := range spans {
		if s.End-s.Start > min {
			out = append(out, s)
		}
	}
	return out
}
