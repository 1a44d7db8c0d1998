package core

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileYieldsDefaults(t *testing.T) {
	settings, err := LoadSettings(fstest.MapFS{}, "")

	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), settings)
	require.Equal(t, DefaultPolicy(), settings.Policy())
	require.Equal(t, 16*time.Millisecond, settings.TickInterval())
}

func TestLoadSettings_OverridesPresentKeys(t *testing.T) {
	fsys := fstest.MapFS{
		DefaultSettingsName: &fstest.MapFile{Data: []byte(`
can_be_stopped_globally = true
persist_across_unload = false
pool_capacity = 4
tick_interval_ms = 50
runner_name = "Worker"
`)},
	}

	settings, err := LoadSettings(fsys, DefaultSettingsName)
	require.NoError(t, err)

	require.True(t, settings.CanBeStopped, "missing keys keep their defaults")
	require.True(t, settings.CanBeStoppedGlobally)
	require.False(t, settings.PersistAcrossUnload)
	require.Equal(t, 50*time.Millisecond, settings.TickInterval())
	require.Equal(t, 100, settings.HistoryCapacity)

	config := settings.SchedulerConfig("game")
	require.Equal(t, "game", config.Name)
	require.Equal(t, 4, config.PoolCapacity)
	require.Equal(t, "Worker", config.RunnerName)
	require.Equal(t, settings.Policy(), config.Policy)

	s := NewScheduler(config)
	require.True(t, s.CanBeStoppedGlobally())
	require.Equal(t, "Worker-1", s.GetRunner().Name())
}

func TestLoadSettings_InvalidTOML(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml": &fstest.MapFile{Data: []byte("pool_capacity = [")},
	}

	_, err := LoadSettings(fsys, "bad.toml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse settings bad.toml")
}

func TestSettings_EncodeRoundTrip(t *testing.T) {
	settings := DefaultSettings()
	settings.PrewarmRunners = 2

	data, err := settings.Encode()
	require.NoError(t, err)
	require.Contains(t, string(data), "prewarm_runners = 2")

	parsed, err := ParseSettings(data)
	require.NoError(t, err)
	require.Equal(t, settings, parsed)
}
