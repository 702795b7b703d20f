//go:build wireinject
// +build wireinject

package main

import (
	"billstack/config"
	"billstack/internal/command"
	"billstack/internal/cron"
	"billstack/internal/database"
	"billstack/internal/handler"
	"billstack/internal/middleware"
	"billstack/internal/router"
	"billstack/internal/service"
	"billstack/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			newHttpClient,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init application.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(wire.Build(command.ProviderSet))
}
