package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteo/backend/internal/service"
)

// clearEnv blanks every bound variable; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range envBindings() {
		t.Setenv(b.EnvVar, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, service.DefaultWeatherEndpoint, cfg.OpenWeatherURL)
	assert.Equal(t, "it", cfg.Language)
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("GO_ENV", "production")
	t.Setenv("OPENWEATHER_API_KEY", "abc123")
	t.Setenv("OPENWEATHER_BASE_URL", "http://localhost:8081/data/2.5/weather")
	t.Setenv("OPENWEATHER_LANG", "en")
	t.Setenv("WEATHER_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("DATABASE_URL", "postgres://meteo@localhost/meteo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "abc123", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 3*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "postgres://meteo@localhost/meteo", cfg.DatabaseURL)

	wc := cfg.WeatherConfig()
	assert.Equal(t, "http://localhost:8081/data/2.5/weather", wc.BaseURL)
	assert.Equal(t, "abc123", wc.APIKey)
	assert.Equal(t, "en", wc.Language)
	assert.Equal(t, 3*time.Second, wc.Timeout)
	assert.Equal(t, service.DefaultUserAgent, wc.UserAgent)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"bad_timeout", "WEATHER_TIMEOUT", "soon"},
		{"negative_ttl", "SESSION_TTL", "-1m"},
		{"ftp_url", "OPENWEATHER_BASE_URL", "ftp://example.com/weather"},
		{"bad_lang", "OPENWEATHER_LANG", "italian"},
		{"bad_port", "PORT", "http"},
		{"bad_level", "LOG_LEVEL", "verbose"},
		{"bad_format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{OpenWeatherURL: service.DefaultWeatherEndpoint, WeatherTimeout: time.Second, SessionTTL: time.Minute}
	require.NoError(t, cfg.Validate())

	cfg.WeatherTimeout = 0
	cfg.OpenWeatherURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather timeout")
	assert.Contains(t, err.Error(), "base url")
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")), "missing file is ignored")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("METEO_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("METEO_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("METEO_DOTENV_PROBE"))
}

func TestLoad_ProductionLogsJSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)

	t.Setenv("LOG_FORMAT", "text")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat, "an explicit format wins")
}
