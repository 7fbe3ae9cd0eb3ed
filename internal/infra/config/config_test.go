package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
http:
  address: ":9090"
weather:
  apiKey: file-key
  dailyQuota: 500
  cacheTtl: 3m
providers:
  - name: groq
    kind: openai
    baseUrl: https://api.groq.com/openai/v1
    model: llama-3.1-8b-instant
  - name: claude
    kind: anthropic
auth:
  secret: from-file
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("WEATHER_API_KEY", "env-key")
	t.Setenv("GROQ_API_KEY", "groq-secret")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "env-key", cfg.Weather.APIKey)
	require.Equal(t, 500, cfg.Weather.DailyQuota)
	require.Equal(t, 3*time.Minute, cfg.Weather.CacheTTL)
	require.Equal(t, 10*time.Minute, cfg.Advice.CacheTTL)
	require.Len(t, cfg.Providers, 2)
	require.Equal(t, "groq-secret", cfg.Providers[0].APIKey)
	require.Empty(t, cfg.Providers[1].APIKey)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[weather]
dailyQuota = 250
timeout = "4s"

[advice]
fallbackTtl = "90s"

[auth]
secret = "toml-secret"

[[providers]]
name = "gemini"
kind = "gemini"
model = "gemini-1.5-flash"
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 250, cfg.Weather.DailyQuota)
	require.Equal(t, 4*time.Second, cfg.Weather.Timeout)
	require.Equal(t, 90*time.Second, cfg.Advice.FallbackTTL)
	require.Equal(t, "toml-secret", cfg.Auth.Secret)
	require.Len(t, cfg.Providers, 1)
	require.Equal(t, "gemini", cfg.Providers[0].Kind)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.Secret = "s"
		return cfg
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Providers = append(cfg.Providers, ProviderConfig{Name: "x", Kind: "cohere"})
	require.ErrorContains(t, cfg.Validate(), "not supported")

	cfg = base()
	cfg.Providers = append(cfg.Providers, ProviderConfig{Name: "OpenAI", Kind: "openai"})
	require.ErrorContains(t, cfg.Validate(), "duplicated")

	cfg = base()
	cfg.Weather.DailyQuota = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.Valkey.Enabled = true
	require.ErrorContains(t, cfg.Validate(), "cache.valkey.addr")

	cfg = base()
	cfg.Auth.Secret = ""
	require.ErrorContains(t, cfg.Validate(), "auth.secret")
}

func TestProviderEnvKey(t *testing.T) {
	require.Equal(t, "OPEN_ROUTER_API_KEY", providerEnvKey(ProviderConfig{Name: "open-router"}))
	require.Equal(t, "ANTHROPIC_API_KEY", providerEnvKey(ProviderConfig{Kind: "anthropic"}))
}
