package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays ACCOUNT_* environment variables onto config. Unset
// variables leave the current values in place.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
