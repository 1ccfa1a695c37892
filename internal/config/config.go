package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	DB    DBConfig    `yaml:"db"`
	Log   LogConfig   `yaml:"log"`
	Time  TimeConfig  `yaml:"time"`
	Trend TrendConfig `yaml:"trend"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TimeConfig names the single IANA zone every timestamp and day boundary is
// evaluated in. The host machine's local zone is never consulted.
type TimeConfig struct {
	Zone string `yaml:"zone"`
}

type TrendConfig struct {
	Window int `yaml:"window"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Defaults apply first, the file second, environment last.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Path: "daykeep.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Time: TimeConfig{
			Zone: "UTC",
		},
		Trend: TrendConfig{
			Window: 7,
		},
	}

	if path := os.Getenv("DAYKEEP_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("DAYKEEP_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("DAYKEEP_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if zone := os.Getenv("DAYKEEP_TIMEZONE"); zone != "" {
		cfg.Time.Zone = zone
	}
	if windowStr := os.Getenv("DAYKEEP_TREND_WINDOW"); windowStr != "" {
		window, err := strconv.Atoi(windowStr)
		if err != nil || window < 1 {
			return Config{}, fmt.Errorf("invalid DAYKEEP_TREND_WINDOW: %q", windowStr)
		}
		cfg.Trend.Window = window
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
