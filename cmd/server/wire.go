//go:build wireinject

package main

import (
	"buildplate.dev/plate-api-gateway/app/domain"
	"buildplate.dev/plate-api-gateway/app/infrastructure"
	"buildplate.dev/plate-api-gateway/app/infrastructure/database"
	"buildplate.dev/plate-api-gateway/app/infrastructure/database/repository"
	"buildplate.dev/plate-api-gateway/app/interfaces/http"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes"
	"github.com/google/wire"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		database.NewDB,
		repository.RepositoryProvider,
		infrastructure.InfrastructureProvider,
		domain.ServiceProvider,
		routes.RouteProvider,
		http.NewHttpServer,
		wire.Struct(new(DataInitializer), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
