package repository

import (
	"buildplate.dev/plate-api-gateway/app/infrastructure/database/repository/userrepo"
	"github.com/google/wire"
)

var RepositoryProvider = wire.NewSet(
	userrepo.NewUserGormRepository,
)
