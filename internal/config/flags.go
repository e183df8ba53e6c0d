package config

import (
	"flag"
	"time"
)

// Flags are the command-line overrides shared by the moonglide subcommands.
// Only flags that were set on the command line override the config.
type Flags struct {
	fs *flag.FlagSet

	Path      string
	Debug     bool
	Latitude  float64
	Longitude float64
	Timezone  string
	Quantum   time.Duration
	Listen    string
}

// Bind registers the override flags on fs.
func Bind(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Path, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&f.Latitude, "lat", 0, "Observer latitude in degrees (north positive)")
	fs.Float64Var(&f.Longitude, "lon", 0, "Observer longitude in degrees (east positive)")
	fs.StringVar(&f.Timezone, "tz", "", "Observer IANA timezone, e.g. America/Phoenix")
	fs.DurationVar(&f.Quantum, "quantum", 0, "Time quantization step")
	fs.StringVar(&f.Listen, "listen", "", "Server listen address")
	return f
}

// Apply applies CLI flag overrides to the config.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.Debug {
				cfg.Logging.Level = "debug"
			}
		case "lat":
			cfg.Observer.Latitude = f.Latitude
		case "lon":
			cfg.Observer.Longitude = f.Longitude
		case "tz":
			cfg.Observer.Timezone = f.Timezone
		case "quantum":
			cfg.Engine.Quantum = f.Quantum
		case "listen":
			cfg.Server.Listen = f.Listen
		}
	})
}

// LoadWithFlags loads the file named by -config (or the standard locations),
// applies the set flags and validates the result.
func LoadWithFlags(f *Flags) (*Config, error) {
	cfg, err := Load(f.Path)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
