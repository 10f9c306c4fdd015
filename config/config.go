// Package config loads harness settings from an optional .env file, an optional config file,
// environment variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/hasselmyr/agify-api-tests/servicedef"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Placeholders used when no real credentials are configured.
const (
	PlaceholderAPIKey        = "YOUR_API_KEY_HERE"
	PlaceholderExpiredAPIKey = "expired_api_key_12345"
)

// Config holds the harness settings.
type Config struct {
	BaseURL         string        `mapstructure:"agify_base_url"`
	APIKey          string        `mapstructure:"agify_api_key"`
	ExpiredAPIKey   string        `mapstructure:"agify_expired_api_key"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RepeatPause     time.Duration `mapstructure:"repeat_pause"`
	MaxResponseTime time.Duration `mapstructure:"max_response_time"`
	LogLevel        string        `mapstructure:"log_level"`
}

// HasAPIKey reports whether a real API key was configured.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != "" && c.APIKey != PlaceholderAPIKey
}

// FlagBindings maps config keys to the command-line flags that override them.
var FlagBindings = map[string]string{
	"agify_base_url": "url",
	"log_level":      "log-level",
}

// Load reads the configuration. envFile and configFile are optional; a missing envFile is
// ignored, a missing configFile is an error. flags may be nil.
func Load(envFile, configFile string, flags *pflag.FlagSet) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("agify_base_url", servicedef.DefaultBaseURL)
	v.SetDefault("agify_api_key", PlaceholderAPIKey)
	v.SetDefault("agify_expired_api_key", PlaceholderExpiredAPIKey)
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("repeat_pause", "100ms")
	v.SetDefault("max_response_time", "2s")
	v.SetDefault("log_level", "warn")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()

	if flags != nil {
		for key, name := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("agify_base_url must not be empty")
	}
	if c.RequestTimeout < 0 {
		return errors.New("invalid request_timeout (must not be negative)")
	}
	if c.RepeatPause < 0 {
		return errors.New("invalid repeat_pause (must not be negative)")
	}
	if c.MaxResponseTime <= 0 {
		return errors.New("invalid max_response_time (must be positive)")
	}
	return nil
}
