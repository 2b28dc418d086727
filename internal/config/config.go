// Package config loads service configuration from a yaml file with
// environment overrides.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	PostgresDSN string `yaml:"postgres_dsn"`
	JWTSecret   string `yaml:"jwt_secret"`
	LogLevel    string `yaml:"log_level"`
}

// Load reads the yaml file named by EXPENSE_TRACKER_CONFIG when set,
// then applies env overrides and defaults. The Postgres DSN is the
// only required value.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
	}

	if path := os.Getenv("EXPENSE_TRACKER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.PostgresDSN = getenvDefault("PG_DSN", cfg.PostgresDSN)
	cfg.JWTSecret = getenvDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)

	if cfg.PostgresDSN == "" {
		return cfg, errors.New("config: postgres dsn required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
