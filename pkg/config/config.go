package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/awilliams/bondmcp/pkg/bond"
)

// Config is the process configuration read from the environment.
type Config struct {
	Bond     bond.Config
	LogLevel zerolog.Level
}

// Load reads configuration from BOND_* environment variables, applying a
// .env file from the working directory first when one exists.
func Load() (*Config, error) {
	// Missing .env is fine; the environment wins either way
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BOND")
	v.AutomaticEnv()
	v.SetDefault("timeout", 10.0)
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", 1.0)
	v.SetDefault("log_level", "info")

	host := strings.TrimSpace(v.GetString("host"))
	if host == "" {
		return nil, fmt.Errorf("BOND_HOST is required")
	}
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimSuffix(host, "/")

	token := v.GetString("token")
	if token == "" {
		return nil, fmt.Errorf("BOND_TOKEN is required")
	}
	if len(token) < 10 {
		return nil, fmt.Errorf("BOND_TOKEN appears to be too short")
	}

	timeout := v.GetFloat64("timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("BOND_TIMEOUT must be positive")
	}
	retries := v.GetInt("max_retries")
	if retries < 0 {
		return nil, fmt.Errorf("BOND_MAX_RETRIES cannot be negative")
	}
	delay := v.GetFloat64("retry_delay")
	if delay < 0 {
		return nil, fmt.Errorf("BOND_RETRY_DELAY cannot be negative")
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log_level")))
	if err != nil {
		return nil, fmt.Errorf("invalid BOND_LOG_LEVEL: %w", err)
	}

	return &Config{
		Bond: bond.Config{
			Host:       host,
			Token:      token,
			Timeout:    time.Duration(timeout * float64(time.Second)),
			MaxRetries: retries,
			RetryDelay: time.Duration(delay * float64(time.Second)),
		},
		LogLevel: level,
	}, nil
}
