package routes

import (
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/dev"
	devcatalog "buildplate.dev/plate-api-gateway/app/interfaces/http/routes/dev/catalog"
	v1 "buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1/auth"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1/users"
	"github.com/google/wire"
)

var RouteProvider = wire.NewSet(
	auth.NewAuthRoute,
	users.NewUsersRoute,
	v1.NewV1Route,
	devcatalog.NewCatalogRoute,
	dev.NewDevRoute,
)
