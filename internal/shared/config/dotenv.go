package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"resume-matcher/internal/shared/telemetry"
)

// loadEnvFiles loads KEY=VALUE files for local development. Variables that
// are already set win; missing files are skipped.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			telemetry.Warn("config.dotenv_unreadable", map[string]any{"path": path, "error": err})
		}
	}
}
