// Package config loads process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the cmd/server settings.
type Server struct {
	Port    int    `env:"PORT" envDefault:"8080"`
	DBPath  string `env:"STATS_DB" envDefault:"data/broadside.db"`
	EraPath string `env:"ERA_CONFIG"`                // Path to a JSON era; empty = preset
	Era     string `env:"ERA" envDefault:"classic"`  // Preset name when ERA_CONFIG is unset
	Seed    int64  `env:"SEED" envDefault:"0"`       // 0 = time-based
}

// ParseServer loads the server configuration from the environment.
func ParseServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
