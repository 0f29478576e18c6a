package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/deliverynotes/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays values from the .env file and the environment. A variable
// set in the process environment wins over the same key in the file. The file
// named with -env must exist; the default .env is optional.
func parseEnv(cfg *Config, args []string, environ map[string]string) error {
	path := flagx.EnvFile(args)
	required := path != ""
	if !required {
		path = defaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", path, err)
		}
		vars = map[string]string{}
	}
	maps.Copy(vars, environ)

	// Unset variables leave the defaults in place.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	return nil
}
