// Package config loads server and CLI configuration from .env files and the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/meteo/backend/internal/service"
)

type Config struct {
	DatabaseURL       string
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	Language          string
	WeatherTimeout    time.Duration
	SessionTTL        time.Duration
	Port              string
	Env               string
	LogLevel          string
	LogFormat         string
}

// envBinding ties a config key to its environment variable
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

func envBindings() []envBinding {
	return []envBinding{
		{"database.url", "DATABASE_URL", nil},
		{"openweather.apikey", "OPENWEATHER_API_KEY", nil},
		{"openweather.baseurl", "OPENWEATHER_BASE_URL", validateEnvURL},
		{"openweather.lang", "OPENWEATHER_LANG", validateEnvLanguage},
		{"openweather.timeout", "WEATHER_TIMEOUT", validateEnvDuration},
		{"session.ttl", "SESSION_TTL", validateEnvDuration},
		{"server.port", "PORT", validateEnvPort},
		{"server.env", "GO_ENV", nil},
		{"log.level", "LOG_LEVEL", validateEnvLogLevel},
		{"log.format", "LOG_FORMAT", validateEnvLogFormat},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openweather.baseurl", service.DefaultWeatherEndpoint)
	v.SetDefault("openweather.lang", service.DefaultLanguage)
	v.SetDefault("openweather.timeout", service.DefaultRequestTimeout)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadDotEnv reads files (".env" when none given) into the process
// environment. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults and the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("database.url"),
		OpenWeatherAPIKey: v.GetString("openweather.apikey"),
		OpenWeatherURL:    v.GetString("openweather.baseurl"),
		Language:          v.GetString("openweather.lang"),
		WeatherTimeout:    v.GetDuration("openweather.timeout"),
		SessionTTL:        v.GetDuration("session.ttl"),
		Port:              v.GetString("server.port"),
		Env:               v.GetString("server.env"),
		LogLevel:          strings.ToLower(v.GetString("log.level")),
		LogFormat:         strings.ToLower(v.GetString("log.format")),
	}
	if cfg.IsProduction() && os.Getenv("LOG_FORMAT") == "" {
		cfg.LogFormat = "json"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that viper cannot reject on its own
func (c *Config) Validate() error {
	var problems []string
	if c.WeatherTimeout <= 0 {
		problems = append(problems, "weather timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "session ttl must be positive")
	}
	if c.OpenWeatherURL == "" {
		problems = append(problems, "openweather base url is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether GO_ENV selects production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// WeatherConfig converts the provider settings for the weather client
func (c *Config) WeatherConfig() service.WeatherConfig {
	wc := service.DefaultWeatherConfig()
	wc.BaseURL = c.OpenWeatherURL
	wc.APIKey = c.OpenWeatherAPIKey
	wc.Language = c.Language
	wc.Timeout = c.WeatherTimeout
	return wc
}

func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range envBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("config: environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url must include a host")
	}
	return nil
}

var languagePattern = regexp.MustCompile(`(?i)^[a-z]{2}(_[a-z]{2})?$`)

func validateEnvLanguage(value string) error {
	if !languagePattern.MatchString(value) {
		return fmt.Errorf("language must match pattern 'xx' or 'xx_xx' (e.g., 'it' or 'pt_br'), got: '%s'", value)
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

func validateEnvPort(value string) error {
	if !portPattern.MatchString(value) {
		return fmt.Errorf("port must be numeric, got '%s'", value)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log level must be one of debug, info, warn, error, got '%s'", value)
}

func validateEnvLogFormat(value string) error {
	switch strings.ToLower(value) {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("log format must be text or json, got '%s'", value)
}
