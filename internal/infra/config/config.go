// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/arena/internal/app/playback"
	"github.com/osa030/arena/internal/infra/audio"
)

// Config represents the application configuration.
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Audio    AudioConfig    `yaml:"audio"`
	Playback PlaybackConfig `yaml:"playback"`
	Console  ConsoleConfig  `yaml:"console"`
	GUI      GUIConfig      `yaml:"gui"`
}

// LibraryConfig represents music library configuration.
type LibraryConfig struct {
	Dir            string                  `yaml:"dir"`
	Shuffle        bool                    `yaml:"shuffle" default:"true"`
	ProbeDurations bool                    `yaml:"probe_durations" default:"true"`
	Filters        map[string]FilterConfig `yaml:"filters"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// AudioConfig represents output device configuration.
type AudioConfig struct {
	SampleRate      int     `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs        int     `yaml:"buffer_ms" default:"100" validate:"gte=10,lte=2000"`
	ResampleQuality int     `yaml:"resample_quality" default:"4" validate:"gte=1,lte=64"`
	Volume          float64 `yaml:"volume" validate:"gte=-10,lte=10"`
}

// PlaybackConfig represents playback actor configuration.
type PlaybackConfig struct {
	EventBuffer    int `yaml:"event_buffer" default:"16" validate:"gte=1,lte=1024"`
	CloseTimeoutMs int `yaml:"close_timeout_ms" default:"2000" validate:"gte=100,lte=30000"`
}

// ConsoleConfig represents terminal player configuration.
type ConsoleConfig struct {
	AutoAdvance bool `yaml:"auto_advance" default:"true"`
	MaxPlaySec  int  `yaml:"max_play_sec" validate:"gte=0"`
}

// GUIConfig represents desktop player configuration.
type GUIConfig struct {
	HideNames   bool    `yaml:"hide_names"`
	AutoAdvance bool    `yaml:"auto_advance" default:"true"`
	Width       float32 `yaml:"width" default:"720" validate:"gt=0"`
	Height      float32 `yaml:"height" default:"480" validate:"gt=0"`
}

// Load loads configuration from a YAML file.
// An empty path yields the defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	// Defaults are set before parsing so that explicit false values in the file survive.
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("ARENA_MUSIC_DIR"); v != "" {
		c.Library.Dir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Library.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// BufferSize returns the speaker buffer length.
func (a AudioConfig) BufferSize() time.Duration {
	return time.Duration(a.BufferMs) * time.Millisecond
}

// DeviceConfig converts the section to the audio device configuration.
func (a AudioConfig) DeviceConfig() audio.Config {
	return audio.Config{
		SampleRate:      a.SampleRate,
		BufferSize:      a.BufferSize(),
		ResampleQuality: a.ResampleQuality,
		Volume:          a.Volume,
	}
}

// ActorConfig converts the section to the playback actor configuration.
func (p PlaybackConfig) ActorConfig() playback.Config {
	return playback.Config{
		EventBuffer:  p.EventBuffer,
		CloseTimeout: p.CloseTimeout(),
	}
}

// CloseTimeout returns how long Close waits for the playback actor.
func (p PlaybackConfig) CloseTimeout() time.Duration {
	return time.Duration(p.CloseTimeoutMs) * time.Millisecond
}

// MaxPlay returns the per-track time cap. Zero means no cap.
func (c ConsoleConfig) MaxPlay() time.Duration {
	return time.Duration(c.MaxPlaySec) * time.Second
}
