package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/audiolab-ai/endpointer/pkg/vad"
)

// Config holds the configuration for the endpoint service.
type Config struct {
	// Addr is the address to listen on (e.g. ":8080").
	Addr string `yaml:"addr"`

	// SampleRate is the PCM sample rate expected on the streaming API.
	SampleRate int `yaml:"sample_rate"`

	// SilenceThresholdDB is the decibel margin below the reference
	// treated as silence.
	SilenceThresholdDB float64 `yaml:"silence_threshold_db"`

	// FrameLength is the analysis window size in samples.
	FrameLength int `yaml:"frame_length"`

	// HopLength is the stride between analysis windows in samples.
	HopLength int `yaml:"hop_length"`

	// MinSilenceDur is the minimum silence duration in seconds for a
	// region to split speech.
	MinSilenceDur float64 `yaml:"min_silence_duration"`

	// MinSpeechDur is the minimum speech duration in seconds for an
	// interval to be reported.
	MinSpeechDur float64 `yaml:"min_speech_duration"`

	// StreamRefPower is the fixed reference power used to classify
	// streamed chunks online. 1.0 references full scale.
	StreamRefPower float64 `yaml:"stream_ref_power"`

	// PreRollMs is how much trailing audio each streaming session
	// retains for replay when speech starts.
	PreRollMs int `yaml:"pre_roll_ms"`

	// MaxBodyBytes caps the accepted WAV upload size.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// ReadBufferSize is the WebSocket read buffer size.
	ReadBufferSize int `yaml:"read_buffer_size"`

	// WriteBufferSize is the WebSocket write buffer size.
	WriteBufferSize int `yaml:"write_buffer_size"`
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:               ":8080",
		SampleRate:         16000,
		SilenceThresholdDB: vad.DefaultSilenceThresholdDB,
		FrameLength:        vad.DefaultFrameLength,
		HopLength:          vad.DefaultHopLength,
		MinSilenceDur:      vad.DefaultMinSilenceDur,
		MinSpeechDur:       vad.DefaultMinSpeechDur,
		StreamRefPower:     1.0,
		PreRollMs:          300,
		MaxBodyBytes:       64 << 20, // 64 MiB
		ReadBufferSize:     4096,
		WriteBufferSize:    4096,
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.StreamRefPower <= 0 {
		return fmt.Errorf("stream reference power must be positive, got %f", c.StreamRefPower)
	}
	if c.PreRollMs < 0 {
		return fmt.Errorf("pre-roll must be non-negative, got %d", c.PreRollMs)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return vad.SignalVADConfig{
		SilenceThresholdDB: c.SilenceThresholdDB,
		FrameLength:        c.FrameLength,
		HopLength:          c.HopLength,
		MinSilenceDur:      c.MinSilenceDur,
		MinSpeechDur:       c.MinSpeechDur,
	}.IsValid()
}

// vadConfig builds the offline analyzer configuration.
func (c *Config) vadConfig() vad.SignalVADConfig {
	return vad.SignalVADConfig{
		SilenceThresholdDB: c.SilenceThresholdDB,
		FrameLength:        c.FrameLength,
		HopLength:          c.HopLength,
		Reference:          vad.RefLocalMax,
		MinSilenceDur:      c.MinSilenceDur,
		MinSpeechDur:       c.MinSpeechDur,
	}
}

// streamVADConfig builds the online analyzer configuration, which
// classifies against the fixed stream reference.
func (c *Config) streamVADConfig() vad.SignalVADConfig {
	cfg := c.vadConfig()
	cfg.Reference = vad.RefFixed
	cfg.RefPower = c.StreamRefPower
	return cfg
}
