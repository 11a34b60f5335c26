package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/stmt-insight/internal/logging"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads a .env file from the working directory or its parent, once.
// It returns the file that was loaded, or "" when none was found.
func LoadEnv(logger logging.Logger) string {
	logger = logging.OrDefault(logger)
	var loaded string
	envOnce.Do(func() {
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(envFile); err != nil {
				continue
			}
			if err := godotenv.Load(envFile); err != nil {
				logger.WithError(err).Warn("Error loading .env file",
					logging.Field{Key: logging.FieldFile, Value: envFile})
				return
			}
			loaded = envFile
			logger.Debug("Loaded environment variables",
				logging.Field{Key: logging.FieldFile, Value: envFile})
			return
		}
		logger.Debug("No .env file found, using environment variables")
	})
	return loaded
}

// ConfigureLogging builds the application logger from the log section.
func ConfigureLogging(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
