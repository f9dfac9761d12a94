package domain

import (
	"buildplate.dev/plate-api-gateway/app/domain/auth"
	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/domain/healthcheck"
	"buildplate.dev/plate-api-gateway/app/domain/user"
	"github.com/google/wire"
)

var ServiceProvider = wire.NewSet(
	auth.NewAuthService,
	user.NewService,
	catalog.NewCatalogCache,
	healthcheck.NewService,
)
