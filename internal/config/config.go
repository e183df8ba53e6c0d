// Package config handles moonglide configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/thurmanmarka/moonglide/internal/logger"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all moonglide settings.
type Config struct {
	Observer ObserverConfig `yaml:"observer"`
	Engine   EngineConfig   `yaml:"engine"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ObserverConfig is the default observing site.
type ObserverConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"` // IANA name, used for the moon-times day
}

// EngineConfig tunes the calculator.
type EngineConfig struct {
	Quantum                time.Duration `yaml:"quantum"`
	DivergenceThresholdDeg float64       `yaml:"divergence_threshold_deg"`
}

// ServerConfig holds the HTTP/websocket server settings.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // websocket push period
	Metrics         bool          `yaml:"metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string            `yaml:"level"`
	JSON  bool              `yaml:"json"`
	File  logger.FileConfig `yaml:"file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Observer: ObserverConfig{
			Latitude:  51.4779, // Greenwich
			Longitude: -0.0015,
			Timezone:  "UTC",
		},
		Engine: EngineConfig{
			Quantum:                10 * time.Second,
			DivergenceThresholdDeg: 1.0,
		},
		Server: ServerConfig{
			Listen:          "127.0.0.1:8080",
			RefreshInterval: 10 * time.Second,
			Metrics:         true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  logger.DefaultFileConfig(""),
		},
	}
}

// Location resolves the observer's timezone.
func (o ObserverConfig) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: observer.timezone %q: %v", ErrInvalid, o.Timezone, err)
	}
	return loc, nil
}

// Validate reports the first bad value.
func (c *Config) Validate() error {
	lat, lon := c.Observer.Latitude, c.Observer.Longitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: observer.latitude %v outside [-90, 90]", ErrInvalid, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: observer.longitude %v outside [-180, 180]", ErrInvalid, lon)
	}
	if _, err := c.Observer.Location(); err != nil {
		return err
	}
	if c.Engine.Quantum <= 0 {
		return fmt.Errorf("%w: engine.quantum must be positive, got %v", ErrInvalid, c.Engine.Quantum)
	}
	if th := c.Engine.DivergenceThresholdDeg; !(th > 0) || math.IsInf(th, 0) {
		return fmt.Errorf("%w: engine.divergence_threshold_deg must be positive, got %v", ErrInvalid, th)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("%w: server.listen is empty", ErrInvalid)
	}
	if c.Server.RefreshInterval < time.Second {
		return fmt.Errorf("%w: server.refresh_interval %v is below 1s", ErrInvalid, c.Server.RefreshInterval)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
