package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Backend
	APIBaseURL         string `mapstructure:"POS_API_URL"`
	HTTPTimeoutSeconds int    `mapstructure:"POS_HTTP_TIMEOUT_SECONDS"`

	// Workboard polling
	PollIntervalSeconds int `mapstructure:"POS_POLL_INTERVAL_SECONDS"`

	// Local state
	StateDBPath string `mapstructure:"POS_STATE_DB"`

	Env string `mapstructure:"APP_ENV"` // development | production
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("POS_API_URL", "http://127.0.0.1:8000/api")
	viper.SetDefault("POS_HTTP_TIMEOUT_SECONDS", 15)
	viper.SetDefault("POS_POLL_INTERVAL_SECONDS", 5)
	viper.SetDefault("POS_STATE_DB", "pos-terminal.db")
	viper.SetDefault("APP_ENV", "development")

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
