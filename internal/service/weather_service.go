package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meteo/backend/internal/domain"
)

const (
	DefaultWeatherEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	DefaultRequestTimeout  = 10 * time.Second
	DefaultLanguage        = "it"
	DefaultUserAgent       = "meteo-backend/1.0"

	unitsMetric      = "metric"
	apiKeyParam      = "appid"
	maxResponseBytes = 1 << 20
)

// WeatherConfig is the fixed provider configuration injected into the client.
type WeatherConfig struct {
	BaseURL   string
	APIKey    string
	Language  string
	Timeout   time.Duration
	UserAgent string
}

// DefaultWeatherConfig returns the OpenWeatherMap defaults without a key.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		BaseURL:   DefaultWeatherEndpoint,
		Language:  DefaultLanguage,
		Timeout:   DefaultRequestTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// WeatherClient fetches current conditions from OpenWeatherMap
type WeatherClient struct {
	cfg        WeatherConfig
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// ClientOption customizes a WeatherClient
type ClientOption func(*WeatherClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *WeatherClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *WeatherClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp snapshots.
func WithClock(now func() time.Time) ClientOption {
	return func(c *WeatherClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewWeatherClient creates a new weather client. Zero config fields fall back
// to DefaultWeatherConfig values.
func NewWeatherClient(cfg WeatherConfig, opts ...ClientOption) *WeatherClient {
	def := DefaultWeatherConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	c := &WeatherClient{
		cfg: cfg,
		// No client-level timeout: the deadline lives on the request context
		// so it can be told apart from a caller cancellation.
		httpClient: &http.Client{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "weather-client")
	return c
}

// Config returns the client configuration
func (c *WeatherClient) Config() WeatherConfig {
	return c.cfg
}

// CurrentByCity fetches current weather for a city name.
func (c *WeatherClient) CurrentByCity(ctx context.Context, city string) (domain.WeatherSnapshot, error) {
	q, err := domain.NewCityQuery(city)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return c.Current(ctx, q)
}

// CurrentByCoords fetches current weather for a coordinate pair.
func (c *WeatherClient) CurrentByCoords(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	q, err := domain.NewCoordsQuery(lat, lon)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return c.Current(ctx, q)
}

// Current fetches current weather for q. Every failure is returned as a
// *domain.Error; partial data is never returned.
func (c *WeatherClient) Current(ctx context.Context, q domain.Query) (domain.WeatherSnapshot, error) {
	if q.City == "" && q.Coords == nil {
		return domain.WeatherSnapshot{}, domain.NewValidationError(domain.MsgValidation)
	}

	reqURL := c.requestURL(q)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return domain.WeatherSnapshot{}, c.fail(q, domain.NewError(domain.KindUnknown,
			fmt.Errorf("weather: failed to create request: %w", err)))
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting current weather", "query", q.String(), "url", maskAPIKey(reqURL, apiKeyParam))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, c.fail(q, classifyTransportError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return domain.WeatherSnapshot{}, c.fail(q, domain.NewStatusError(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return domain.WeatherSnapshot{}, c.fail(q, classifyTransportError(ctx, err))
	}
	if len(body) > maxResponseBytes {
		return domain.WeatherSnapshot{}, c.fail(q, domain.NewError(domain.KindMalformedResponse,
			fmt.Errorf("weather: response exceeds %d bytes", maxResponseBytes)))
	}

	var wire openWeatherResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.WeatherSnapshot{}, c.fail(q, domain.NewError(domain.KindMalformedResponse,
			fmt.Errorf("weather: failed to decode response: %w", err)))
	}

	snap, err := wire.snapshot(c.now())
	if err != nil {
		return domain.WeatherSnapshot{}, c.fail(q, domain.NewError(domain.KindMalformedResponse,
			fmt.Errorf("weather: %w", err)))
	}
	if err := snap.Validate(); err != nil {
		return domain.WeatherSnapshot{}, c.fail(q, domain.NewError(domain.KindMalformedResponse,
			fmt.Errorf("weather: invalid snapshot: %w", err)))
	}

	c.logger.Info("weather data received",
		"query", q.String(),
		"location", snap.Name,
		"temperature", snap.Temperature,
		"condition", snap.Description)

	return snap, nil
}

func (c *WeatherClient) requestURL(q domain.Query) string {
	params := url.Values{}
	if q.Coords != nil {
		params.Set("lat", strconv.FormatFloat(q.Coords.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(q.Coords.Lon, 'f', -1, 64))
	} else {
		params.Set("q", q.City)
	}
	params.Set(apiKeyParam, c.cfg.APIKey)
	params.Set("units", unitsMetric)
	params.Set("lang", c.cfg.Language)
	return c.cfg.BaseURL + "?" + params.Encode()
}

func (c *WeatherClient) fail(q domain.Query, e *domain.Error) *domain.Error {
	if e.Kind == domain.KindCanceled {
		c.logger.Debug("weather request canceled", "query", q.String())
		return e
	}
	c.logger.Warn("weather request failed",
		"query", q.String(),
		"kind", e.Kind.String(),
		"status", e.StatusCode,
		"error", e.Err)
	return e
}

// classifyTransportError maps a failure without a usable HTTP response.
// parent is the caller's context, before the client timeout was applied.
func classifyTransportError(parent context.Context, err error) *domain.Error {
	if errors.Is(parent.Err(), context.Canceled) {
		return domain.NewError(domain.KindCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewError(domain.KindTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewError(domain.KindCanceled, err)
	}
	return domain.NewError(domain.KindNetwork, err)
}

// maskAPIKey hides the credential before a URL is logged.
func maskAPIKey(rawURL, keyParam string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if !q.Has(keyParam) {
		return rawURL
	}
	q.Set(keyParam, "***MASKED***")
	u.RawQuery = q.Encode()
	return u.String()
}
