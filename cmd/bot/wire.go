//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/jose-valero/game-queue-bot/internal/app"
	"github.com/jose-valero/game-queue-bot/internal/cutoff"
	"github.com/jose-valero/game-queue-bot/internal/httpapi"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

func SetupApplication(ctx context.Context, cfg *config.Config) (*Application, func(), error) {
	wire.Build(wire.NewSet(
		ProvideApplication,
		ProvideLoggerFactory,
		ProvideRegistry,
		ProvideCutoffStore,
		app.ProvideService,
		app.ProvideRouter,
		app.ProvideSession,
		app.ProvideBot,
		httpapi.ProvideServer,
	))
	return nil, nil, nil
}

func SetupCutoffStore(ctx context.Context, cfg *config.Config) (cutoff.Store, func(), error) {
	wire.Build(wire.NewSet(ProvideLoggerFactory, ProvideCutoffStore))
	return nil, nil, nil
}
