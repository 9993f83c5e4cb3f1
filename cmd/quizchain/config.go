// CLAUDE:SUMMARY Optional YAML config file layered under environment variables.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional CONFIG_FILE shape. Environment variables win
// over file values; the file exists for deployments that prefer one
// reviewable document over a pile of env vars.
type fileConfig struct {
	Port          string        `yaml:"port"`
	Model         string        `yaml:"model"`
	MaxDepth      int           `yaml:"max_depth"`
	RetryBudget   int           `yaml:"retry_budget"`
	Budget        time.Duration `yaml:"budget"`
	EventsDB      string        `yaml:"events_db"`
	RemoteBrowser string        `yaml:"remote_browser"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// env returns the environment value or, when unset, the file value, or the
// default.
func envOr(key, fromFile, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	return def
}
