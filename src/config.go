package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Per-session settings for saving and loading tape audio.
 *
 * Description:	A Config is handed to NewEncoder / NewDecoder when a
 *		session is opened and is never changed afterwards.
 *		Values can come from defaults, a YAML file, and
 *		command line options, in that order.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_SAMPLES_PER_SEC = 44100
	DEFAULT_BITS_PER_SAMPLE = 16
	DEFAULT_NUM_CHANNELS    = 1
	DEFAULT_VOLUME          = 90
	DEFAULT_LEVEL           = 5
	DEFAULT_HYSTERESIS      = 1
)

// ChannelSelect picks which input channel(s) feed the level classifier.
type ChannelSelect int

const (
	ChannelMix ChannelSelect = iota
	ChannelLeft
	ChannelRight
)

func (c ChannelSelect) String() string {
	switch c {
	case ChannelMix:
		return "mix"
	case ChannelLeft:
		return "left"
	case ChannelRight:
		return "right"
	default:
		return fmt.Sprintf("ChannelSelect(%d)", int(c))
	}
}

func ParseChannelSelect(s string) (ChannelSelect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mix", "both", "":
		return ChannelMix, nil
	case "left", "l":
		return ChannelLeft, nil
	case "right", "r":
		return ChannelRight, nil
	}

	return ChannelMix, &ConfigError{Field: "channel select", Value: s, Reason: "must be mix, left or right"}
}

func (c *ChannelSelect) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	var parsed, err = ParseChannelSelect(s)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

func (c ChannelSelect) MarshalYAML() (any, error) {
	return c.String(), nil
}

type Config struct {
	SampleRate    int `yaml:"sample_rate"`
	BitsPerSample int `yaml:"bits_per_sample"`
	Channels      int `yaml:"channels"`

	// Save only.  0 .. 100 % of the sample range.
	VolumePercent int `yaml:"volume_percent"`

	// Load only.
	ChannelSelect         ChannelSelect `yaml:"channel_select"`
	DetectionLevelPercent int           `yaml:"detection_level_percent"` // -100 .. +100
	HysteresisPercent     int           `yaml:"hysteresis_percent"`      // 0 .. 100
	Invert                bool          `yaml:"invert"`
	FilterEnabled         bool          `yaml:"filter_enabled"`
	FilterOrder           int           `yaml:"filter_order"` // 0 picks one from the sample rate
}

func DefaultConfig() Config {
	return Config{
		SampleRate:            DEFAULT_SAMPLES_PER_SEC,
		BitsPerSample:         DEFAULT_BITS_PER_SAMPLE,
		Channels:              DEFAULT_NUM_CHANNELS,
		VolumePercent:         DEFAULT_VOLUME,
		ChannelSelect:         ChannelMix,
		DetectionLevelPercent: DEFAULT_LEVEL,
		HysteresisPercent:     DEFAULT_HYSTERESIS,
	}
}

// Validate reports the first setting that would make a session unusable.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return &ConfigError{Field: "sample rate", Value: c.SampleRate, Reason: "must be greater than zero"}
	}

	switch c.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return &ConfigError{Field: "bits per sample", Value: c.BitsPerSample, Reason: "must be 8, 16, 24 or 32"}
	}

	if c.Channels != 1 && c.Channels != 2 {
		return &ConfigError{Field: "channels", Value: c.Channels, Reason: "must be 1 or 2"}
	}

	if c.VolumePercent < 0 || c.VolumePercent > 100 {
		return &ConfigError{Field: "volume", Value: c.VolumePercent, Reason: "must be in range of 0 to 100"}
	}

	switch c.ChannelSelect {
	case ChannelMix, ChannelLeft, ChannelRight:
	default:
		return &ConfigError{Field: "channel select", Value: c.ChannelSelect, Reason: "must be mix, left or right"}
	}

	if c.DetectionLevelPercent < -100 || c.DetectionLevelPercent > 100 {
		return &ConfigError{Field: "detection level", Value: c.DetectionLevelPercent, Reason: "must be in range of -100 to 100"}
	}

	if c.HysteresisPercent < 0 || c.HysteresisPercent > 100 {
		return &ConfigError{Field: "hysteresis", Value: c.HysteresisPercent, Reason: "must be in range of 0 to 100"}
	}

	if c.FilterOrder < 0 {
		return &ConfigError{Field: "filter order", Value: c.FilterOrder, Reason: "must not be negative"}
	}

	return nil
}

func (c Config) BytesPerSample() int {
	return c.BitsPerSample / 8
}

// FrameBytes is the size of one sample for every channel.
func (c Config) FrameBytes() int {
	return c.Channels * c.BytesPerSample()
}

// LoadConfig overlays YAML settings on top of base.
func LoadConfig(r io.Reader, base Config) (Config, error) {
	var data, readErr = io.ReadAll(r)
	if readErr != nil {
		return base, readErr
	}

	var cfg = base

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	var f, err = os.Open(path) //nolint:gosec // User-supplied config file from CLI
	if err != nil {
		return DefaultConfig(), err
	}
	defer f.Close()

	return LoadConfig(f, DefaultConfig())
}
