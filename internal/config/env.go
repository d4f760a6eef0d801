package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment override, e.g. XCASSETCLEAN_DRY_RUN.
const EnvPrefix = "XCASSETCLEAN_"

// ApplyEnv overlays environment variables onto cfg. Unset variables leave
// the corresponding field untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
