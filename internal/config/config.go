// Package config provides configuration loading, validation, and management
// for the bot. It handles reading from YAML files, setting default values,
// environment overrides, and validating configuration parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/warfbot/warfbot/internal/cycle"
)

// Config defines the application configuration parameters for all components:
// logging, the Telegram transport, the database, the world-state provider,
// the notification core, and the scheduled tasks.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Worldstate WorldstateConfig `mapstructure:"worldstate"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Cycles     []CycleConfig    `mapstructure:"cycles" validate:"dive"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds transport settings.
type TelegramConfig struct {
	Token   string `mapstructure:"token"    validate:"required"`
	AdminID int64  `mapstructure:"admin_id" validate:"required,gt=0"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// WorldstateConfig holds world-state provider settings.
type WorldstateConfig struct {
	BaseURL  string        `mapstructure:"base_url"  validate:"required,url"`
	Platform string        `mapstructure:"platform"  validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"   validate:"min=1s,max=1m"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"min=10s,max=30m"`
}

// NotifyConfig holds notification core settings.
type NotifyConfig struct {
	// ThresholdsMin are the alert thresholds in minutes-remaining.
	ThresholdsMin []int `mapstructure:"thresholds_min" validate:"required,min=1,dive,gt=0"`
	// RatePerSecond bounds the broadcast rate; zero disables the limiter.
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"min=0"`
	// Retention bounds fired-event ledger growth; zero disables pruning.
	Retention time.Duration `mapstructure:"retention" validate:"min=0"`
}

// SchedulerConfig holds per-task scheduling settings keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task at a fixed interval.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// CycleConfig overrides one built-in cycle definition. Reference instants and
// phase durations drift as the game is patched; operators recalibrate them
// here without a rebuild.
type CycleConfig struct {
	Location       string        `mapstructure:"location"         validate:"required"`
	Reference      time.Time     `mapstructure:"reference"        validate:"required"`
	PhaseAName     string        `mapstructure:"phase_a_name"     validate:"required"`
	PhaseADuration time.Duration `mapstructure:"phase_a_duration" validate:"required,gt=0"`
	PhaseBName     string        `mapstructure:"phase_b_name"     validate:"required"`
	PhaseBDuration time.Duration `mapstructure:"phase_b_duration" validate:"required,gt=0"`
}

// Load loads and validates configuration from:
//  1. Default values
//  2. The config file at configPath (optional)
//  3. BOT_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults plus env cover it.
	}

	cfg := &Config{}
	// The default hooks handle durations; RFC 3339 parsing is needed for the
	// cycle reference instants.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("database.path", "warfbot.db")

	v.SetDefault("worldstate.base_url", "https://api.warframestat.us")
	v.SetDefault("worldstate.platform", "pc")
	v.SetDefault("worldstate.timeout", 10*time.Second)
	v.SetDefault("worldstate.cache_ttl", 2*time.Minute)

	v.SetDefault("notify.thresholds_min", []int{10, 5})
	v.SetDefault("notify.rate_per_second", 25.0)
	v.SetDefault("notify.retention", 7*24*time.Hour)

	v.SetDefault("scheduler.tasks.cycle_check.enabled", true)
	v.SetDefault("scheduler.tasks.cycle_check.interval", time.Minute)
	v.SetDefault("scheduler.tasks.state_flush.enabled", true)
	v.SetDefault("scheduler.tasks.state_flush.interval", 5*time.Minute)
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.interval", 24*time.Hour)
}

// BuildCycleTable merges the config's cycle overrides over the built-in
// definitions and validates the result. A malformed definition is a
// configuration error and fails startup before the scheduler ever runs.
func (c *Config) BuildCycleTable() (*cycle.Table, error) {
	defs := cycle.DefaultDefinitions()
	index := make(map[cycle.LocationID]int, len(defs))
	for i, d := range defs {
		index[d.ID] = i
	}

	for _, override := range c.Cycles {
		def := cycle.Definition{
			ID:        cycle.LocationID(override.Location),
			Reference: override.Reference,
			PhaseA:    cycle.Phase{Name: override.PhaseAName, Duration: override.PhaseADuration},
			PhaseB:    cycle.Phase{Name: override.PhaseBName, Duration: override.PhaseBDuration},
		}
		if i, ok := index[def.ID]; ok {
			defs[i] = def
		} else {
			index[def.ID] = len(defs)
			defs = append(defs, def)
		}
	}

	return cycle.NewTable(defs...)
}
