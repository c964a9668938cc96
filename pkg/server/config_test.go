package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero stream reference", func(c *Config) { c.StreamRefPower = 0 }},
		{"negative pre-roll", func(c *Config) { c.PreRollMs = -1 }},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"negative hop length", func(c *Config) { c.HopLength = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9090"
silence_threshold_db: 35
min_silence_duration: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// File values override defaults; untouched fields keep them.
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 35.0, cfg.SilenceThresholdDB)
	assert.Equal(t, 0.5, cfg.MinSilenceDur)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, 1024, cfg.FrameLength)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sample_rate: -1"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
