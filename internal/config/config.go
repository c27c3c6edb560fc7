// Package config loads the tracker configuration from a YAML file with
// environment variable overrides.
package config

import (
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type Config struct {
	// BaseURL is the REST base URL the push endpoint derives from.
	BaseURL string `yaml:"base_url"`
	// Scope keys the persisted active order id, typically a user id.
	Scope string `yaml:"scope"`
	// ReconnectDelay is a duration string ("5s"); empty uses the default.
	ReconnectDelay string `yaml:"reconnect_delay"`
	DatabaseURL    string `yaml:"database_url"`
	RedisURL       string `yaml:"redis_url"`
	MetricsAddr    string `yaml:"metrics_addr"`
}

// Load reads path (when non-empty) and applies env overrides on top.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, err
		}
	}
	overrideEnv(&c.BaseURL, "BASE_URL")
	overrideEnv(&c.Scope, "TRACKER_SCOPE")
	overrideEnv(&c.ReconnectDelay, "RECONNECT_DELAY")
	overrideEnv(&c.DatabaseURL, "DATABASE_URL")
	overrideEnv(&c.RedisURL, "REDIS_URL")
	overrideEnv(&c.MetricsAddr, "METRICS_ADDR")
	return c, nil
}

// Delay parses ReconnectDelay, falling back to def on empty or invalid.
func (c Config) Delay(def time.Duration) time.Duration {
	if c.ReconnectDelay == "" {
		return def
	}
	d, err := time.ParseDuration(c.ReconnectDelay)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
