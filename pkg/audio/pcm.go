package audio

// SamplesToFloat converts PCM-16 samples to normalized float64 values
// in [-1, 1].
func SamplesToFloat(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}
	return out
}

// FloatToSamples converts normalized float64 values to PCM-16 samples.
// Values outside [-1, 1] are clamped.
func FloatToSamples(values []float64) []int16 {
	out := make([]int16, len(values))
	for i, v := range values {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		if v >= 1 {
			out[i] = 32767
		} else {
			out[i] = int16(v * 32768.0)
		}
	}
	return out
}

// PCMBytesToFloat converts little-endian 16-bit PCM bytes to normalized
// float64 samples. A trailing odd byte is ignored.
func PCMBytesToFloat(data []byte) []float64 {
	n := len(data) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(data[i*2]) | int16(data[i*2+1])<<8
		out[i] = float64(s) / 32768.0
	}
	return out
}

// FloatToPCMBytes converts normalized float64 samples to little-endian
// 16-bit PCM bytes.
func FloatToPCMBytes(values []float64) []byte {
	samples := FloatToSamples(values)
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
