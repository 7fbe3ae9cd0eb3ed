// Package openweather fetches current conditions, forecast and air quality from
// an OpenWeather-compatible API and folds them into a weather.Snapshot.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

const (
	defaultBaseURL   = "https://api.openweathermap.org/data/2.5"
	defaultTimeout   = 10 * time.Second
	defaultUnits     = "metric"
	defaultUserAgent = "wearcast/1.0"

	currentEndpoint      = "/weather"
	forecastEndpoint     = "/forecast"
	airPollutionEndpoint = "/air_pollution"
)

// Config controls the upstream client.
type Config struct {
	BaseURL string
	APIKey  string
	Units   string
	Timeout time.Duration
}

// Client implements weather.Fetcher. It never retries: every attempt is billed.
// The current and forecast calls are reserved by the caller; the air quality
// call is reserved here and skipped when the budget is spent.
type Client struct {
	http   *resty.Client
	budget weather.Budget
	apiKey string
	units  string
	logger *slog.Logger
	now    func() time.Time
}

// StatusError is a non-2xx answer from the upstream API.
type StatusError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openweather %s returned %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("openweather %s returned %d", e.Endpoint, e.Status)
}

// NewClient constructs a client drawing its optional calls from budget.
func NewClient(cfg Config, budget weather.Budget, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Units == "" {
		cfg.Units = defaultUnits
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	logger = logger.With("component", "openweather.client")

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("User-Agent", defaultUserAgent).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("upstream request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("upstream response",
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time().String(),
			"bytes", len(resp.Body()),
		)
		return nil
	})

	return &Client{
		http:   httpClient,
		budget: budget,
		apiKey: cfg.APIKey,
		units:  cfg.Units,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch implements weather.Fetcher.
func (c *Client) Fetch(ctx context.Context, city string) (weather.Snapshot, bool) {
	if c.apiKey == "" {
		c.logger.Warn("weather api key not configured")
		return weather.Snapshot{}, false
	}

	var (
		current  currentResponse
		forecast forecastResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, currentEndpoint, c.cityQuery(city), &current)
	})
	g.Go(func() error {
		return c.get(gctx, forecastEndpoint, c.cityQuery(city), &forecast)
	})
	if err := g.Wait(); err != nil {
		c.logFailure(city, err)
		return weather.Snapshot{}, false
	}
	if err := current.validate(); err != nil {
		c.logger.Warn("weather payload rejected", "city", city, "error", err)
		return weather.Snapshot{}, false
	}

	aqi := c.airQuality(ctx, current.Coord)
	snap := buildSnapshot(current, forecast, aqi)
	snap.FetchedAt = c.now().UTC()
	return snap, true
}

// airQuality is best effort: any failure, or an exhausted budget, yields 1 ("good").
func (c *Client) airQuality(ctx context.Context, coord coordinates) int {
	if c.budget != nil && !c.budget.TryReserve(1) {
		c.logger.Info("weather quota spent, skipping air quality", "lat", coord.Lat, "lon", coord.Lon)
		return 1
	}
	var resp airPollutionResponse
	query := map[string]string{
		"lat":   strconv.FormatFloat(coord.Lat, 'f', -1, 64),
		"lon":   strconv.FormatFloat(coord.Lon, 'f', -1, 64),
		"appid": c.apiKey,
	}
	if err := c.get(ctx, airPollutionEndpoint, query, &resp); err != nil {
		c.logger.Warn("air quality unavailable, assuming good", "lat", coord.Lat, "lon", coord.Lon, "error", err)
		return 1
	}
	if len(resp.List) == 0 {
		return 1
	}
	aqi := resp.List[0].Main.AQI
	if aqi < 1 || aqi > 5 {
		return 1
	}
	return aqi
}

func (c *Client) get(ctx context.Context, endpoint string, query map[string]string, out any) error {
	// decode every 2xx body as JSON whatever content type it claims
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		ForceContentType("application/json").
		SetResult(out).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("openweather %s: %w", endpoint, err)
	}
	if !resp.IsSuccess() {
		statusErr := &StatusError{Endpoint: endpoint, Status: resp.StatusCode()}
		var body errorResponse
		if json.Unmarshal(resp.Body(), &body) == nil {
			statusErr.Message = body.Message
		}
		return statusErr
	}
	if len(resp.Body()) == 0 {
		return fmt.Errorf("openweather %s: %w", endpoint, errEmptyBody)
	}
	return nil
}

func (c *Client) cityQuery(city string) map[string]string {
	return map[string]string{
		"q":     city,
		"units": c.units,
		"appid": c.apiKey,
	}
}

func (c *Client) logFailure(city string, err error) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		c.logger.Info("city not found upstream", "city", city)
		return
	}
	c.logger.Warn("weather fetch failed", "city", city, "error", err)
}

var errEmptyBody = errors.New("empty response body")

var _ weather.Fetcher = (*Client)(nil)
