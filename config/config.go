// Package config loads runtime settings from defaults, an optional JSON file
// and SPIRITMASTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "spiritmaster.cfg.json"

// DBConfig selects the battle-log database.
type DBConfig struct {
	Driver string `json:"driver" mapstructure:"driver"` // "sqlite", "postgres" or "none"
	Path   string `json:"path" mapstructure:"path"`
	DSN    string `json:"dsn" mapstructure:"dsn"`
}

// OddsConfig tunes the Monte Carlo "odds" command.
type OddsConfig struct {
	Runs    int           `json:"runs" mapstructure:"runs"`
	Workers int           `json:"workers" mapstructure:"workers"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"` // e.g. "30s"
}

// Config holds every runtime setting.
type Config struct {
	LogLevel  string     `json:"logLevel" mapstructure:"logLevel"`
	LogsDir   string     `json:"logsDir" mapstructure:"logsDir"`
	SaveDir   string     `json:"saveDir" mapstructure:"saveDir"`
	ArenaDir  string     `json:"arenaDir" mapstructure:"arenaDir"`
	MaxRounds int        `json:"maxRounds" mapstructure:"maxRounds"` // 0 keeps the arena's value
	Seed      int64      `json:"seed" mapstructure:"seed"`           // 0 keeps the arena's value
	Odds      OddsConfig `json:"odds" mapstructure:"odds"`
	DB        DBConfig   `json:"db" mapstructure:"db"`
}

// Load reads configuration from configDir and sets default values.
// A missing config file is not an error.
func Load(configDir string) (Config, error) {
	v := viper.New()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "./logs")
	v.SetDefault("saveDir", "./saves")
	v.SetDefault("arenaDir", "./arena")
	v.SetDefault("maxRounds", 0)
	v.SetDefault("seed", 0)

	v.SetDefault("odds.runs", 200)
	v.SetDefault("odds.workers", 0)
	v.SetDefault("odds.timeout", 30*time.Second)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "./spiritmaster.db")
	v.SetDefault("db.dsn", "")

	v.SetEnvPrefix("SPIRITMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Odds.Runs <= 0 {
		return Config{}, fmt.Errorf("odds.runs must be positive, got %d", cfg.Odds.Runs)
	}
	if cfg.Odds.Timeout <= 0 {
		return Config{}, fmt.Errorf("odds.timeout must be positive, got %s", cfg.Odds.Timeout)
	}
	switch cfg.DB.Driver {
	case "sqlite", "postgres", "none":
	default:
		return Config{}, fmt.Errorf("unknown db.driver %q", cfg.DB.Driver)
	}
	return cfg, nil
}
