package trace

import "go.opentelemetry.io/otel/attribute"

// Attribute keys used by the analyzers and the service surface.
const (
	AttrSessionID = "session.id"

	AttrAudioSampleRate = "audio.sample_rate"
	AttrAudioDurationS  = "audio.duration_s"
	AttrAudioNumSamples = "audio.num_samples"

	AttrVADIntervals   = "vad.intervals"
	AttrVADThresholdDB = "vad.threshold_db"
)

// AudioAttrs creates attributes describing an input waveform.
func AudioAttrs(numSamples, sampleRate int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrAudioNumSamples, numSamples),
		attribute.Int(AttrAudioSampleRate, sampleRate),
		attribute.Float64(AttrAudioDurationS, float64(numSamples)/float64(sampleRate)),
	}
}

// SessionAttrs creates attributes for a streaming session.
func SessionAttrs(sessionID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
}
