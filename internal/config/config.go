package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by the start and report commands.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Events struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"events"`
	Stats struct {
		Workers int `yaml:"workers"`
	} `yaml:"stats"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	RateLimit struct {
		Enabled bool   `yaml:"enabled"`
		Limit   int    `yaml:"limit"`
		Window  string `yaml:"window"`
	} `yaml:"rateLimit"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Events.Timezone = "Asia/Seoul"
	cfg.Stats.Workers = 1
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.RateLimit.Limit = 100
	cfg.RateLimit.Window = "1m"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
// LOG_LEVEL, LOG_FORMAT and EVENTS_TIMEZONE override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("EVENTS_TIMEZONE")); v != "" {
		cfg.Events.Timezone = v
	}
}

// StoreDriver resolves which event log backs the service. Without an explicit
// driver it picks the first configured of postgres, redis and sqlite, else memory.
func (c Config) StoreDriver() string {
	if c.Store.Driver != "" {
		return strings.ToLower(c.Store.Driver)
	}
	switch {
	case c.Postgres.URL != "":
		return DriverPostgres
	case c.Redis.Addr != "":
		return DriverRedis
	case c.SQLite.Path != "":
		return DriverSQLite
	}
	return DriverMemory
}

// Location loads the bucketing time zone.
func (c Config) Location() (*time.Location, error) {
	name := c.Events.Timezone
	if name == "" {
		name = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
