// Package config loads the habit bot configuration: an optional YAML file,
// a .env file and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	// Embedded zone database; slim containers ship without one.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/habitbot/core/config"
	coredatabase "github.com/m3rciful/habitbot/core/database"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StoragePostgres = coredatabase.DriverPostgres
	StorageSQLite   = coredatabase.DriverSQLite
)

// StorageConfig selects where documents live and how they are named.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	// Dir is the document directory for the file driver.
	Dir            string `yaml:"dir" envconfig:"STORAGE_DIR"`
	LedgerDoc      string `yaml:"ledger_doc" envconfig:"STORAGE_LEDGER_DOC"`
	CatalogDoc     string `yaml:"catalog_doc" envconfig:"STORAGE_CATALOG_DOC"`
	SubscribersDoc string `yaml:"subscribers_doc" envconfig:"STORAGE_SUBSCRIBERS_DOC"`
}

// BotConfig holds presentation settings.
type BotConfig struct {
	Timezone string `yaml:"timezone" envconfig:"BOT_TIMEZONE"`
	Currency string `yaml:"currency" envconfig:"BOT_CURRENCY"`
}

// ReminderConfig schedules the daily workout push.
type ReminderConfig struct {
	Enabled *bool `yaml:"enabled" envconfig:"REMINDER_ENABLED"`
	Hour    *int  `yaml:"hour" envconfig:"REMINDER_HOUR"`
	Minute  int   `yaml:"minute" envconfig:"REMINDER_MINUTE"`
}

// WorkoutConfig controls the weekday rotation.
type WorkoutConfig struct {
	Rotation string `yaml:"rotation" envconfig:"WORKOUT_ROTATION"`
	// Seed pins the random source; zero seeds from the runtime.
	Seed uint64 `yaml:"seed" envconfig:"WORKOUT_SEED"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage  StorageConfig       `yaml:"storage"`
	Database coredatabase.Config `yaml:"database"`
	Bot      BotConfig           `yaml:"bot"`
	Reminder ReminderConfig      `yaml:"reminder"`
	Workout  WorkoutConfig       `yaml:"workout"`

	location *time.Location
}

// CoreConfig exposes the embedded core settings to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Location is the resolved bot time zone. Valid after Normalize.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// UsesDatabase reports whether documents are stored in SQL.
func (c *Config) UsesDatabase() bool {
	return c.Storage.Driver == StoragePostgres || c.Storage.Driver == StorageSQLite
}

// ReminderEnabled reports whether the daily push runs.
func (c *Config) ReminderEnabled() bool {
	return c.Reminder.Enabled == nil || *c.Reminder.Enabled
}

// Load reads .env, then the YAML file at path (a missing file is skipped),
// then the environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	s := &cfg.Storage
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case "":
		s.Driver = StorageFile
	case StorageFile, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: file, postgres, sqlite", s.Driver)
	}
	s.Dir = orDefault(s.Dir, "data")
	s.LedgerDoc = orDefault(s.LedgerDoc, "data.json")
	s.CatalogDoc = orDefault(s.CatalogDoc, "trainings.yaml")
	s.SubscribersDoc = orDefault(s.SubscribersDoc, "subscribers.json")

	if cfg.UsesDatabase() {
		cfg.Database.Driver = s.Driver
		if err := cfg.Database.Validate(); err != nil {
			return err
		}
	}

	cfg.Bot.Timezone = orDefault(cfg.Bot.Timezone, "Europe/Kiev")
	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		return fmt.Errorf("invalid bot.timezone %q: %w", cfg.Bot.Timezone, err)
	}
	cfg.location = loc
	cfg.Bot.Currency = orDefault(cfg.Bot.Currency, "грн")

	if cfg.Reminder.Hour == nil {
		h := 8
		cfg.Reminder.Hour = &h
	}
	if h := *cfg.Reminder.Hour; h < 0 || h > 23 {
		return fmt.Errorf("reminder.hour must be within 0..23, got %d", h)
	}
	if m := cfg.Reminder.Minute; m < 0 || m > 59 {
		return fmt.Errorf("reminder.minute must be within 0..59, got %d", m)
	}

	cfg.Workout.Rotation = strings.ToLower(orDefault(cfg.Workout.Rotation, "fixed"))
	if r := cfg.Workout.Rotation; r != "fixed" && r != "random" {
		return fmt.Errorf("invalid workout.rotation %q; allowed: fixed, random", r)
	}
	return nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
