package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/wearcast/internal/infra/llm"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig       `yaml:"http"`
	Weather   WeatherConfig    `yaml:"weather"`
	Advice    AdviceConfig     `yaml:"advice"`
	Providers []ProviderConfig `yaml:"providers"`
	Cache     CacheConfig      `yaml:"cache"`
	Postgres  PostgresConfig   `yaml:"postgres"`
	Auth      AuthConfig       `yaml:"auth"`
	Favorites FavoritesConfig  `yaml:"favorites"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Retry           RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig replays idempotent requests that fail with a gateway error.
// Exclude lists path prefixes that are never replayed.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// WeatherConfig points at the OpenWeather-compatible upstream.
type WeatherConfig struct {
	APIKey     string        `yaml:"apiKey"`
	BaseURL    string        `yaml:"baseUrl"`
	Units      string        `yaml:"units"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheTTL   time.Duration `yaml:"cacheTtl"`
	DailyQuota int           `yaml:"dailyQuota"`
}

// AdviceConfig controls advice caching and the prompt template.
type AdviceConfig struct {
	CacheTTL      time.Duration       `yaml:"cacheTtl"`
	CacheSliding  time.Duration       `yaml:"cacheSliding"`
	FallbackTTL   time.Duration       `yaml:"fallbackTtl"`
	PromptPath    string              `yaml:"promptPath"`
	PromptObject  ObjectStorageConfig `yaml:"promptObject"`
	TokenEncoding string              `yaml:"tokenEncoding"`
}

// ObjectStorageConfig locates an object in an S3-compatible bucket.
type ObjectStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// ProviderConfig is one entry in the priority-ordered AI provider list.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Kind        string        `yaml:"kind"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CacheConfig selects the cache backend shared by weather and advice.
type CacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings. An empty DSN keeps
// users and favorites in memory.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// AuthConfig drives token issuance.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	Issuer          string        `yaml:"issuer"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// FavoritesConfig limits saved cities.
type FavoritesConfig struct {
	MaxPerUser int `yaml:"maxPerUser"`
}

// Load reads configuration from a YAML or TOML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = tomlToYAML(data)
		if err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// tomlToYAML re-encodes a TOML document so a single set of yaml tags (and
// yaml's duration parsing) applies to both formats.
func tomlToYAML(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setList(&cfg.HTTP.AllowedOrigins, "HTTP_ALLOWED_ORIGINS")
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setString(&cfg.Weather.APIKey, "WEATHER_API_KEY")
	setString(&cfg.Weather.BaseURL, "WEATHER_BASE_URL")
	setDuration(&cfg.Weather.Timeout, "WEATHER_TIMEOUT")
	setDuration(&cfg.Weather.CacheTTL, "WEATHER_CACHE_TTL")
	setInt(&cfg.Weather.DailyQuota, "WEATHER_DAILY_QUOTA")

	setString(&cfg.Advice.PromptPath, "ADVICE_PROMPT_PATH")
	setString(&cfg.Advice.PromptObject.Endpoint, "ADVICE_PROMPT_ENDPOINT")
	setString(&cfg.Advice.PromptObject.AccessKey, "ADVICE_PROMPT_ACCESS_KEY")
	setString(&cfg.Advice.PromptObject.SecretKey, "ADVICE_PROMPT_SECRET_KEY")
	setString(&cfg.Advice.PromptObject.Bucket, "ADVICE_PROMPT_BUCKET")
	setString(&cfg.Advice.PromptObject.Key, "ADVICE_PROMPT_KEY")
	for i := range cfg.Providers {
		setString(&cfg.Providers[i].APIKey, providerEnvKey(cfg.Providers[i]))
	}

	setBool(&cfg.Cache.Valkey.Enabled, "CACHE_VALKEY_ENABLED")
	setString(&cfg.Cache.Valkey.Addr, "CACHE_VALKEY_ADDR")

	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}

	setString(&cfg.Auth.Secret, "AUTH_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "AUTH_TOKEN_TTL")
	setInt(&cfg.Favorites.MaxPerUser, "FAVORITES_MAX_PER_USER")
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// providerEnvKey maps a provider name like "open-router" to OPEN_ROUTER_API_KEY.
func providerEnvKey(p ProviderConfig) string {
	name := p.Name
	if name == "" {
		name = p.Kind
	}
	return nonAlnum.ReplaceAllString(strings.ToUpper(name), "_") + "_API_KEY"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     false,
				MaxAttempts: 2,
				BaseBackoff: 150 * time.Millisecond,
			},
		},
		Weather: WeatherConfig{
			BaseURL:    "https://api.openweathermap.org/data/2.5",
			Units:      "metric",
			Timeout:    10 * time.Second,
			CacheTTL:   5 * time.Minute,
			DailyQuota: 900,
		},
		Advice: AdviceConfig{
			CacheTTL:      10 * time.Minute,
			CacheSliding:  5 * time.Minute,
			FallbackTTL:   2 * time.Minute,
			TokenEncoding: "cl100k_base",
		},
		Providers: []ProviderConfig{
			{Name: "openai", Kind: llm.KindOpenAI, Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 400, Timeout: 20 * time.Second},
			{Name: "anthropic", Kind: llm.KindAnthropic, Model: "claude-3-5-haiku-latest", Temperature: 0.7, MaxTokens: 400, Timeout: 20 * time.Second},
			{Name: "gemini", Kind: llm.KindGemini, Model: "gemini-1.5-flash", Temperature: 0.7, MaxTokens: 400, Timeout: 20 * time.Second},
		},
		Cache: CacheConfig{
			Valkey: ValkeyConfig{Prefix: "wearcast"},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Auth: AuthConfig{
			Issuer:          "wearcast",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Favorites: FavoritesConfig{
			MaxPerUser: 20,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Weather.DailyQuota <= 0 {
		return errors.New("weather.dailyQuota must be positive")
	}
	if c.Weather.CacheTTL <= 0 {
		return errors.New("weather.cacheTtl must be positive")
	}
	if c.Advice.CacheTTL <= 0 || c.Advice.FallbackTTL <= 0 {
		return errors.New("advice cache ttls must be positive")
	}
	if c.Advice.CacheSliding < 0 {
		return errors.New("advice.cacheSliding cannot be negative")
	}
	seen := make(map[string]struct{}, len(c.Providers))
	for i, p := range c.Providers {
		if !llm.KnownKind(p.Kind) {
			return fmt.Errorf("providers[%d].kind %q is not supported", i, p.Kind)
		}
		name := strings.ToLower(p.Name)
		if name == "" {
			name = strings.ToLower(p.Kind)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("providers[%d].name %q is duplicated", i, name)
		}
		seen[name] = struct{}{}
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey is enabled")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if c.Favorites.MaxPerUser <= 0 {
		return errors.New("favorites.maxPerUser must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
