package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads environment variables from an env file when one is
// configured, before viper binds the config options. Resolution order:
// --env-file flag, ENV_FILE variable, .env in the working directory.
func LoadEnvFile() error {
	if path := envFilePath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}

	// The default .env is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}
	return nil
}

// envFilePath resolves the configured env file path. The flag is parsed by
// hand because env loading happens before cobra sees the arguments.
func envFilePath() string {
	path := os.Getenv("ENV_FILE")
	for i, arg := range os.Args {
		if arg == "--env-file" && i+1 < len(os.Args) {
			path = os.Args[i+1]
		} else if value, ok := strings.CutPrefix(arg, "--env-file="); ok {
			path = value
		}
	}

	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
