package v1

import (
	"net/http"

	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1/auth"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1/users"
	"buildplate.dev/plate-api-gateway/config"
	"buildplate.dev/plate-api-gateway/config/appconfig"
	"github.com/gin-gonic/gin"
)

type V1Route struct {
	authRoute  *auth.AuthRoute
	usersRoute *users.UsersRoute
	appConfig  *appconfig.Config
}

func NewV1Route(
	authRoute *auth.AuthRoute,
	usersRoute *users.UsersRoute,
	appConfig *appconfig.Config,
) *V1Route {
	return &V1Route{
		authRoute,
		usersRoute,
		appConfig,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Router.GET("/config", v1Route.GetConfig)
	v1Route.authRoute.RegisterRouter(v1Router)
	v1Route.usersRoute.RegisterRouter(v1Router)
}

// GetVersion godoc
// @Summary     Get API build version
// @Description Returns the current build version of the API server.
// @Tags        system
// @Produce     json
// @Success     200 {object} map[string]string "version info"
// @Router      /v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": config.Version,
	})
}

// GetConfig godoc
// @Summary     Get client configuration
// @Description Returns the application name, description and toast settings used by clients.
// @Tags        system
// @Produce     json
// @Success     200 {object} appconfig.Config
// @Router      /v1/config [get]
func (v1Route *V1Route) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, v1Route.appConfig)
}
