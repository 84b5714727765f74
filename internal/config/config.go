package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full configuration tree (matches config/config.yaml).
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	FootballData FootballDataConfig `mapstructure:"football_data"`
	Fetch        FetchConfig        `mapstructure:"fetch"`
}

// ServerConfig configures the read-only query API.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

// DatabaseConfig points at the embedded sqlite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FootballDataConfig configures the upstream football-data.org client.
type FootballDataConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	RetryCount         int    `mapstructure:"retry_count"`
	RateSpacingSeconds int    `mapstructure:"rate_spacing_seconds"`
	SnapshotDir        string `mapstructure:"snapshot_dir"`
}

// FetchConfig configures the scheduled pipeline.
type FetchConfig struct {
	IntervalMinutes int      `mapstructure:"interval_minutes"`
	Competitions    []string `mapstructure:"competitions"`
	LookbackDays    int      `mapstructure:"lookback_days"`
}

// LoadConfig reads config/config.yaml, then overrides sensitive or
// deploy-time fields from the environment (.env is loaded if present).
// A missing yaml file is not fatal; defaults plus env cover everything.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8600)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/sports.db")
	v.SetDefault("football_data.base_url", "https://api.football-data.org/v4")
	v.SetDefault("football_data.timeout_seconds", 30)
	v.SetDefault("football_data.retry_count", 3)
	v.SetDefault("football_data.rate_spacing_seconds", 6)
	v.SetDefault("football_data.snapshot_dir", "data/snapshots")
	v.SetDefault("fetch.interval_minutes", 10)
	v.SetDefault("fetch.competitions", []string{"PL", "CL"})
	v.SetDefault("fetch.lookback_days", 7)
}

// overrideFromEnv applies env overrides (priority env > yaml).
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("FOOTBALL_API_KEY"); v != "" {
		cfg.FootballData.APIKey = v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.FootballData.BaseURL = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SNAPSHOT_DIR"); v != "" {
		cfg.FootballData.SnapshotDir = v
	}
	if v := os.Getenv("FETCH_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Fetch.IntervalMinutes = n
		}
	}
	if v := os.Getenv("DEFAULT_COMPETITIONS"); v != "" {
		parts := strings.Split(v, ",")
		comps := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				comps = append(comps, p)
			}
		}
		if len(comps) > 0 {
			cfg.Fetch.Competitions = comps
		}
	}
}

// Interval returns the fetch interval as a duration.
func (f *FetchConfig) Interval() time.Duration {
	return time.Duration(f.IntervalMinutes) * time.Minute
}

// Timeout returns the per-call HTTP timeout.
func (f *FootballDataConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RateSpacing returns the minimum spacing between upstream calls.
func (f *FootballDataConfig) RateSpacing() time.Duration {
	return time.Duration(f.RateSpacingSeconds) * time.Second
}
