package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type (
	// ClientOptions keeps the remote collection client settings.
	ClientOptions struct {
		ApiUrl        string        `env:"EMPLOYEE_API_URL" envDefault:"http://127.0.0.1:2413/api/v1"`
		Timeout       time.Duration `env:"EMPLOYEE_API_TIMEOUT" envDefault:"10s"`
		UpdateMode    string        `env:"EMPLOYEE_UPDATE_MODE" envDefault:"fixed"`
		ReconcileMode string        `env:"EMPLOYEE_RECONCILE" envDefault:"none"`
	}

	// ServerOptions keeps the reference server settings.
	ServerOptions struct {
		Port        int           `env:"SERVER_PORT" envDefault:"2413"`
		BasePath    string        `env:"SERVER_BASE_PATH" envDefault:"/api/v1"`
		SeedFile    string        `env:"SERVER_SEED_FILE"`
		Latency     time.Duration `env:"SERVER_LATENCY" envDefault:"0s"`
		FailRate    float64       `env:"SERVER_FAIL_RATE" envDefault:"0"`
		CORSOrigins []string      `env:"SERVER_CORS_ORIGINS" envSeparator:","`
	}

	Config struct {
		Client   ClientOptions
		Server   ServerOptions
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	}
)

// LoadEnv loads existing .env files (missing ones are skipped) and returns the number of files loaded.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		existingFiles = append(existingFiles, file)
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

// Load parses the Config from the environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("env.Parse: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("%s: %w", "LOG_LEVEL", err)
	}

	return c, nil
}

// SetupLogger configures the global logger.
func (c *Config) SetupLogger() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}

	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}
