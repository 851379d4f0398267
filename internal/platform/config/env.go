package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every env tag declared by command configs.
const EnvPrefix = "VELO_SITE_"

// ParseEnv loads configuration from VELO_SITE_-prefixed environment variables.
//
// Struct tags name the unprefixed key, so `env:"PUBLIC_DIR"` reads
// VELO_SITE_PUBLIC_DIR.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
