package acetape

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValid(t *testing.T) {
	var cfg = DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.BytesPerSample())
	assert.Equal(t, 2, cfg.FrameBytes())

	cfg.Channels = 2
	cfg.BitsPerSample = 24
	assert.Equal(t, 6, cfg.FrameBytes())
}

func TestConfigValidate(t *testing.T) {
	var cases = map[string]func(c *Config){
		"sample rate":     func(c *Config) { c.SampleRate = 0 },
		"bits per sample": func(c *Config) { c.BitsPerSample = 12 },
		"channels":        func(c *Config) { c.Channels = 3 },
		"volume":          func(c *Config) { c.VolumePercent = -1 },
		"channel select":  func(c *Config) { c.ChannelSelect = ChannelSelect(7) },
		"detection level": func(c *Config) { c.DetectionLevelPercent = 101 },
		"hysteresis":      func(c *Config) { c.HysteresisPercent = -5 },
		"filter order":    func(c *Config) { c.FilterOrder = -1 },
	}

	for field, breakIt := range cases {
		var cfg = DefaultConfig()
		breakIt(&cfg)

		var err = cfg.Validate()
		require.Error(t, err, field)

		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, field, ce.Field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestParseChannelSelect(t *testing.T) {
	for in, expected := range map[string]ChannelSelect{
		"":        ChannelMix,
		"mix":     ChannelMix,
		"Both":    ChannelMix,
		"left":    ChannelLeft,
		"L":       ChannelLeft,
		" right ": ChannelRight,
		"r":       ChannelRight,
	} {
		var got, err = ParseChannelSelect(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, got, in)
	}

	var _, err = ParseChannelSelect("centre")
	assert.True(t, IsConfigError(err))
}

func TestLoadConfigOverlay(t *testing.T) {
	var text = `
sample_rate: 22050
channels: 2
channel_select: right
invert: true
filter_enabled: true
`

	var cfg, err = LoadConfig(strings.NewReader(text), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 22050, cfg.SampleRate)
	assert.Equal(t, 2, cfg.Channels)
	assert.Equal(t, ChannelRight, cfg.ChannelSelect)
	assert.True(t, cfg.Invert)
	assert.True(t, cfg.FilterEnabled)

	// Untouched settings keep their defaults.
	assert.Equal(t, DEFAULT_BITS_PER_SAMPLE, cfg.BitsPerSample)
	assert.Equal(t, DEFAULT_VOLUME, cfg.VolumePercent)
	assert.Equal(t, DEFAULT_LEVEL, cfg.DetectionLevelPercent)
}

func TestLoadConfigBad(t *testing.T) {
	var base = DefaultConfig()

	var cfg, err = LoadConfig(strings.NewReader("channel_select: centre\n"), base)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Equal(t, base, cfg)

	_, err = LoadConfig(strings.NewReader("sample_rate: [1, 2"), base)
	require.Error(t, err)
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.ChannelSelect = ChannelLeft
	cfg.FilterOrder = 9

	var out, err = yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "channel_select: left")

	var path = filepath.Join(t.TempDir(), "acetape.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o600))

	back, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
