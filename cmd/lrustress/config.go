package main

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into Config
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when a loaded or flag-overridden config is unusable
	ErrInvalidConfig = errors.New("invalid config")
)

// Config describes one stress run.
type Config struct {
	Capacity    int     `env:"CAPACITY" envDefault:"1024"`
	Workers     int     `env:"WORKERS" envDefault:"8"`
	Ops         int     `env:"OPS" envDefault:"100000"`
	Keyspace    int     `env:"KEYSPACE" envDefault:"4096"`
	ReadRatio   float64 `env:"READ_RATIO" envDefault:"0.7"`
	RemoveRatio float64 `env:"REMOVE_RATIO" envDefault:"0.05"`
	ResizeEvery int     `env:"RESIZE_EVERY" envDefault:"0"`
	Seed        uint64  `env:"SEED" envDefault:"1"`
	LogLevel    string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string  `env:"LOG_FORMAT" envDefault:"text"`
}

const envPrefix = "LRUSTRESS_"

// LoadConfig reads the optional .env files, then LRUSTRESS_* variables.
func LoadConfig(files ...string) (Config, error) {
	// the .env file is optional
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var errs []error
	if c.Capacity < 0 {
		errs = append(errs, fmt.Errorf("capacity must not be negative, got %d", c.Capacity))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Ops < 0 {
		errs = append(errs, fmt.Errorf("ops must not be negative, got %d", c.Ops))
	}
	if c.Keyspace < 1 {
		errs = append(errs, fmt.Errorf("keyspace must be positive, got %d", c.Keyspace))
	}
	if c.ReadRatio < 0 || c.RemoveRatio < 0 || c.ReadRatio+c.RemoveRatio > 1 {
		errs = append(errs, fmt.Errorf("read ratio %.2f and remove ratio %.2f must be non-negative and sum to at most 1",
			c.ReadRatio, c.RemoveRatio))
	}
	if c.ResizeEvery < 0 {
		errs = append(errs, fmt.Errorf("resize-every must not be negative, got %d", c.ResizeEvery))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}
