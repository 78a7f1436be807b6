//go:build wireinject
// +build wireinject

package main

import (
	"go_jsoning_server/app/http_jsoning_app"
	"go_jsoning_server/internal/domain/services"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/internal/infra/repo"

	"github.com/google/wire"
)

func InitializeApp(c *configs.Config) (*App, func(), error) {
	wire.Build(
		repo.Reposet,
		services.ServiceSet,
		http_jsoning_app.AppSet,
		NewApp,
	)
	return &App{}, nil, nil
}
