//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/wearcast/internal/bootstrap"
	"github.com/yanqian/wearcast/internal/domain/advice"
	"github.com/yanqian/wearcast/internal/domain/auth"
	"github.com/yanqian/wearcast/internal/domain/favorites"
	"github.com/yanqian/wearcast/internal/domain/weather"
	"github.com/yanqian/wearcast/internal/infra/config"
	"github.com/yanqian/wearcast/internal/infra/openweather"
	httpiface "github.com/yanqian/wearcast/internal/interface/http"
	"github.com/yanqian/wearcast/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCacheStore,
		providePostgresPool,
		provideWeatherConfig,
		provideQuota,
		provideOpenWeatherClient,
		wire.Bind(new(weather.Fetcher), new(*openweather.Client)),
		weather.NewService,
		provideAdviceConfig,
		provideAIProviders,
		provideTemplateSource,
		provideTokenCounter,
		advice.NewPromptBuilder,
		advice.NewService,
		provideAuthConfig,
		provideUserRepository,
		auth.NewService,
		provideFavoritesConfig,
		provideFavoriteRepository,
		favorites.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
