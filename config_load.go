package goAset

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable LoadConfig reads, e.g.
// GOASET_BACKEND_BASE_URL or GOASET_REFRESH_INTERVAL.
const EnvPrefix = "GOASET_"

// LoadConfig returns DefaultConfig overlaid with environment variables. A
// .env file in the working directory is loaded first when present; a missing
// file is not an error.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return LoadConfigFrom(nil)
}

// LoadConfigFrom overlays environ (or the process environment when nil) on
// DefaultConfig and validates the result.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
