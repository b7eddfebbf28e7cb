package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ARENA_MUSIC_DIR", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Library.Dir)
	assert.True(t, cfg.Library.Shuffle)
	assert.True(t, cfg.Library.ProbeDurations)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Audio.BufferSize())
	assert.Equal(t, 4, cfg.Audio.ResampleQuality)
	assert.Equal(t, 16, cfg.Playback.EventBuffer)
	assert.Equal(t, 2*time.Second, cfg.Playback.CloseTimeout())
	assert.True(t, cfg.Console.AutoAdvance)
	assert.Zero(t, cfg.Console.MaxPlay())
	assert.False(t, cfg.GUI.HideNames)
	assert.True(t, cfg.GUI.AutoAdvance)

	device := cfg.Audio.DeviceConfig()
	assert.Equal(t, 44100, device.SampleRate)
	assert.Equal(t, 100*time.Millisecond, device.BufferSize)

	actor := cfg.Playback.ActorConfig()
	assert.Equal(t, 16, actor.EventBuffer)
	assert.Equal(t, 2*time.Second, actor.CloseTimeout)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("ARENA_MUSIC_DIR", "")

	path := writeConfig(t, `
library:
  dir: /music
  shuffle: false
  probe_durations: false
  filters:
    size_limit_filter:
      enabled: true
      settings:
        min_bytes: 2048
audio:
  sample_rate: 48000
  volume: -1.5
console:
  auto_advance: false
  max_play_sec: 30
gui:
  hide_names: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/music", cfg.Library.Dir)
	assert.False(t, cfg.Library.Shuffle)
	assert.False(t, cfg.Library.ProbeDurations)
	assert.True(t, cfg.IsFilterEnabled("size_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.Equal(t, 2048, cfg.Library.Filters["size_limit_filter"].Settings["min_bytes"])
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, -1.5, cfg.Audio.Volume)
	assert.Equal(t, 100, cfg.Audio.BufferMs, "unset fields keep their defaults")
	assert.False(t, cfg.Console.AutoAdvance)
	assert.Equal(t, 30*time.Second, cfg.Console.MaxPlay())
	assert.True(t, cfg.GUI.HideNames)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ARENA_MUSIC_DIR", "/from/env")

	cfg, err := Load(writeConfig(t, "library:\n  dir: /from/file\n"))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Library.Dir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "invalid yaml",
			body:   "library: [",
			errMsg: "failed to parse config file",
		},
		{
			name:   "sample rate too low",
			body:   "audio:\n  sample_rate: 100\n",
			errMsg: "SampleRate",
		},
		{
			name:   "resample quality out of range",
			body:   "audio:\n  resample_quality: 65\n",
			errMsg: "ResampleQuality",
		},
		{
			name:   "negative max play",
			body:   "console:\n  max_play_sec: -1\n",
			errMsg: "MaxPlaySec",
		},
		{
			name:   "zero event buffer",
			body:   "playback:\n  event_buffer: 0\n",
			errMsg: "EventBuffer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
