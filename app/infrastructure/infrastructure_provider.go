package infrastructure

import (
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	"buildplate.dev/plate-api-gateway/app/infrastructure/catalogsource"
	"buildplate.dev/plate-api-gateway/config/appconfig"
	"github.com/google/wire"
)

var InfrastructureProvider = wire.NewSet(
	cache.NewCacheService,
	catalogsource.NewFromEnv,
	appconfig.NewFromEnv,
)
