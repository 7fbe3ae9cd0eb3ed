package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/wearcast/internal/domain/advice"
	"github.com/yanqian/wearcast/internal/domain/auth"
	"github.com/yanqian/wearcast/internal/domain/favorites"
	"github.com/yanqian/wearcast/internal/domain/weather"
	"github.com/yanqian/wearcast/internal/infra/cachestore"
	"github.com/yanqian/wearcast/internal/infra/config"
	"github.com/yanqian/wearcast/internal/infra/favoriterepo"
	"github.com/yanqian/wearcast/internal/infra/llm"
	"github.com/yanqian/wearcast/internal/infra/openweather"
	"github.com/yanqian/wearcast/internal/infra/prompttemplate"
	"github.com/yanqian/wearcast/internal/infra/tokenizer"
	"github.com/yanqian/wearcast/internal/infra/userrepo"
	"github.com/yanqian/wearcast/pkg/cache"
)

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{
		CacheTTL:   cfg.Weather.CacheTTL,
		DailyQuota: cfg.Weather.DailyQuota,
	}
}

// provideQuota builds the single process-wide upstream budget.
func provideQuota(cfg *config.Config) *weather.Quota {
	return weather.NewQuota(cfg.Weather.DailyQuota)
}

func provideOpenWeatherClient(cfg *config.Config, quota *weather.Quota, logger *slog.Logger) *openweather.Client {
	if strings.TrimSpace(cfg.Weather.APIKey) == "" {
		logger.Warn("weather api key not set, every lookup will report not found")
	}
	return openweather.NewClient(openweather.Config{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		Units:   cfg.Weather.Units,
		Timeout: cfg.Weather.Timeout,
	}, quota, logger)
}

func provideAdviceConfig(cfg *config.Config) advice.Config {
	return advice.Config{
		CacheTTL:     cfg.Advice.CacheTTL,
		CacheSliding: cfg.Advice.CacheSliding,
		FallbackTTL:  cfg.Advice.FallbackTTL,
	}
}

func provideAIProviders(cfg *config.Config, logger *slog.Logger) ([]advice.Provider, error) {
	cfgs := make([]llm.ProviderConfig, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		cfgs = append(cfgs, llm.ProviderConfig{
			Name:        p.Name,
			Kind:        p.Kind,
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
			Timeout:     p.Timeout,
		})
		if strings.TrimSpace(p.APIKey) == "" {
			logger.Info("ai provider has no api key and will be skipped", "provider", p.Name)
		}
	}
	return llm.NewProviders(cfgs, advice.SystemInstruction)
}

func provideTemplateSource(cfg *config.Config, logger *slog.Logger) (advice.TemplateSource, error) {
	obj := cfg.Advice.PromptObject
	return prompttemplate.New(prompttemplate.Config{
		Path: cfg.Advice.PromptPath,
		Object: prompttemplate.ObjectConfig{
			Endpoint:  obj.Endpoint,
			AccessKey: obj.AccessKey,
			SecretKey: obj.SecretKey,
			Bucket:    obj.Bucket,
			Region:    obj.Region,
			Key:       obj.Key,
		},
	}, logger)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) advice.TokenCounter {
	return tokenizer.New(cfg.Advice.TokenEncoding, logger)
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		Issuer:          cfg.Auth.Issuer,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideFavoritesConfig(cfg *config.Config) favorites.Config {
	return favorites.Config{MaxPerUser: cfg.Favorites.MaxPerUser}
}

// providePostgresPool returns nil when no DSN is configured or the database is
// unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideFavoriteRepository(pool *pgxpool.Pool) favorites.Repository {
	if pool == nil {
		return favoriterepo.NewMemoryRepository()
	}
	return favoriterepo.NewPostgresRepository(pool)
}

// provideCacheStore picks the shared cache backend for weather and advice.
// Valkey failures degrade to the in-process store.
func provideCacheStore(cfg *config.Config, logger *slog.Logger) (cache.Store, func()) {
	noop := func() {}
	vcfg := cfg.Cache.Valkey
	if !vcfg.Enabled {
		return cachestore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(vcfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return cachestore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return cachestore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return cachestore.NewMemoryStore(), noop
	}
	logger.Info("valkey cache store enabled", "addr", vcfg.Addr)
	return cachestore.NewValkeyStore(client, vcfg.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
