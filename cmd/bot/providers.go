package main

import (
	"context"

	"github.com/jose-valero/game-queue-bot/internal/app"
	"github.com/jose-valero/game-queue-bot/internal/cutoff"
	"github.com/jose-valero/game-queue-bot/internal/httpapi"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/queue"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

// Application is everything `run` starts.
type Application struct {
	Bot           *app.Bot
	Server        *httpapi.Server
	LoggerFactory *infra.LoggerFactory
}

func ProvideApplication(bot *app.Bot, server *httpapi.Server, loggerFactory *infra.LoggerFactory) *Application {
	return &Application{Bot: bot, Server: server, LoggerFactory: loggerFactory}
}

func ProvideLoggerFactory(cfg *config.Config) *infra.LoggerFactory {
	return infra.ProvideLoggerFactory(cfg.LogLevel)
}

func ProvideRegistry(cfg *config.Config, loggerFactory *infra.LoggerFactory) *queue.Registry {
	return queue.NewRegistry(
		queue.WithRegistryHistoryDepth(cfg.HistoryDepth),
		queue.WithRegistryLogger(loggerFactory.Create("Registry")),
	)
}

// ProvideCutoffStore opens the configured backend; the cleanup closes it.
func ProvideCutoffStore(ctx context.Context, cfg *config.Config, loggerFactory *infra.LoggerFactory) (cutoff.Store, func(), error) {
	store, err := cutoff.Open(ctx, cfg, loggerFactory)
	if err != nil {
		return nil, nil, err
	}
	logger := loggerFactory.Create("CutoffStore").Sugar()
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Errorf("close cutoff store err[%v]", err)
		}
	}, nil
}
