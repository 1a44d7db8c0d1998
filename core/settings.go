package core

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultSettingsName is the file LoadSettings looks for by convention.
const DefaultSettingsName = "async_settings.toml"

// Settings is the user-editable scheduler configuration.
// Keys missing from the file keep their default values.
type Settings struct {
	CanBeStopped         bool   `toml:"can_be_stopped"`
	CanBeStoppedGlobally bool   `toml:"can_be_stopped_globally"`
	PersistAcrossUnload  bool   `toml:"persist_across_unload"`
	PoolCapacity         int    `toml:"pool_capacity"`
	PrewarmRunners       int    `toml:"prewarm_runners"`
	TickIntervalMS       int    `toml:"tick_interval_ms"`
	RunnerName           string `toml:"runner_name"`
	HistoryCapacity      int    `toml:"history_capacity"`
}

// DefaultSettings is what LoadSettings returns when no settings file exists.
func DefaultSettings() Settings {
	policy := DefaultPolicy()
	return Settings{
		CanBeStopped:         policy.CanBeStopped,
		CanBeStoppedGlobally: policy.CanBeStoppedGlobally,
		PersistAcrossUnload:  policy.PersistAcrossUnload,
		PoolCapacity:         defaultPoolCapacity,
		PrewarmRunners:       0,
		TickIntervalMS:       int(defaultTickInterval / time.Millisecond),
		RunnerName:           defaultRunnerName,
		HistoryCapacity:      defaultTaskHistoryCapacity,
	}
}

// LoadSettings reads name from fsys. A missing file is not an error and
// yields DefaultSettings().
func LoadSettings(fsys fs.FS, name string) (Settings, error) {
	if name == "" {
		name = DefaultSettingsName
	}
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", name, err)
	}
	settings, err := ParseSettings(data)
	if err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", name, err)
	}
	return settings, nil
}

// ParseSettings decodes TOML on top of DefaultSettings().
func ParseSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s Settings) Policy() Policy {
	return Policy{
		CanBeStopped:         s.CanBeStopped,
		CanBeStoppedGlobally: s.CanBeStoppedGlobally,
		PersistAcrossUnload:  s.PersistAcrossUnload,
	}
}

// TickInterval is the TickLoop interval; non-positive values mean the default.
func (s Settings) TickInterval() time.Duration {
	if s.TickIntervalMS <= 0 {
		return defaultTickInterval
	}
	return time.Duration(s.TickIntervalMS) * time.Millisecond
}

// SchedulerConfig builds a scheduler config named name from the settings,
// with default handlers.
func (s Settings) SchedulerConfig(name string) *SchedulerConfig {
	config := DefaultSchedulerConfig()
	if name != "" {
		config.Name = name
	}
	config.Policy = s.Policy()
	config.PoolCapacity = s.PoolCapacity
	config.PrewarmRunners = s.PrewarmRunners
	if s.RunnerName != "" {
		config.RunnerName = s.RunnerName
	}
	if s.HistoryCapacity > 0 {
		config.HistoryCapacity = s.HistoryCapacity
	}
	return config
}

// Encode renders the settings as TOML.
func (s Settings) Encode() ([]byte, error) {
	return toml.Marshal(s)
}
