// Package config loads daemon configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all settings for the vrigd daemon.
// Library packages take their own Config structs; this only covers wiring.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"VRIG_LOG_LEVEL" envDefault:"info"`

	// WebPort is the port for the control/status web server.
	WebPort string `env:"VRIG_WEB_PORT" envDefault:"39540"`

	// VMCAddr is the UDP listen address for the VMC protocol receiver.
	// 39539 is the conventional VMC performer port.
	VMCAddr string `env:"VRIG_VMC_ADDR" envDefault:"0.0.0.0:39539"`

	// TickHz is the pipeline update rate in frames per second.
	TickHz float64 `env:"VRIG_TICK_HZ" envDefault:"60"`

	// LinkURL is an optional websocket motion-link endpoint.
	// Empty disables the link.
	LinkURL string `env:"VRIG_LINK_URL"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TickHz <= 0 {
		return nil, fmt.Errorf("VRIG_TICK_HZ must be positive, got %v", cfg.TickHz)
	}
	return cfg, nil
}
