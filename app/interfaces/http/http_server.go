package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/healthcheck"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/middleware"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/dev"
	v1 "buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"github.com/gin-gonic/gin"
)

const defaultPort = "8080"

type HttpServer struct {
	engine      *gin.Engine
	v1Route     *v1.V1Route
	devRoute    *dev.DevRoute
	healthcheck *healthcheck.HealthcheckCrontabService
	server      *http.Server
}

func NewHttpServer(v1Route *v1.V1Route, devRoute *dev.DevRoute, healthcheckService *healthcheck.HealthcheckCrontabService) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	server := HttpServer{
		engine:      gin.New(),
		v1Route:     v1Route,
		devRoute:    devRoute,
		healthcheck: healthcheckService,
	}
	server.engine.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(logger.GetLogger()),
		middleware.CORS(environment_variables.EnvironmentVariables.ALLOWED_CORS_HOSTS),
	)
	server.engine.GET("/health-check", server.HealthCheck)
	server.v1Route.RegisterRouter(server.engine.Group("/"))
	server.devRoute.RegisterRouter(server.engine.Group("/"))

	port := environment_variables.EnvironmentVariables.HTTP_PORT
	if port == "" {
		port = defaultPort
	}
	server.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           server.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &server
}

// Handler exposes the router, mostly for tests.
func (httpServer *HttpServer) Handler() http.Handler {
	return httpServer.engine
}

// HealthCheck reports the last scheduled check; 503 names the failing components.
func (httpServer *HttpServer) HealthCheck(c *gin.Context) {
	status := httpServer.healthcheck.LastStatus()
	if status.CheckedAt.IsZero() || status.Healthy {
		c.JSON(http.StatusOK, "ok")
		return
	}
	c.JSON(http.StatusServiceUnavailable, status)
}

func (httpServer *HttpServer) Run() error {
	logger.GetLogger().Infof("listening on %s", httpServer.server.Addr)
	if err := httpServer.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (httpServer *HttpServer) Shutdown(ctx context.Context) error {
	return httpServer.server.Shutdown(ctx)
}
