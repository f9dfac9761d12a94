package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/healthcheck"
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	"buildplate.dev/plate-api-gateway/app/interfaces/http"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"buildplate.dev/plate-api-gateway/config"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"github.com/mileusna/crontab"
)

const shutdownTimeout = 15 * time.Second

type Application struct {
	HttpServer      *http.HttpServer
	Healthcheck     *healthcheck.HealthcheckCrontabService
	DataInitializer *DataInitializer
	Cache           cache.CacheService
}

func (application *Application) Start(ctx context.Context) error {
	if err := application.DataInitializer.Install(ctx); err != nil {
		logger.GetLogger().Warnf("data initializer: %v", err)
	}

	cron := crontab.New()
	application.Healthcheck.Start(ctx, cron)
	defer cron.Shutdown()
	defer func() {
		if err := application.Cache.Close(); err != nil {
			logger.GetLogger().Warnf("failed to close cache: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.HttpServer.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.GetLogger().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return application.HttpServer.Shutdown(shutdownCtx)
}

func init() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
}

func main() {
	logger.GetLogger().Infof("plate-api-gateway %s", config.Version)
	application, err := CreateApplication()
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "a1f0c4d2-6e8b-4b3a-9d57-2c9e1f7b5a08").
			Fatalf("unable to create application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := application.Start(ctx); err != nil {
		logger.GetLogger().
			WithField("error_code", "f7b3e2a9-1c5d-4e60-8a4f-b9d2c6e0f314").
			Fatalf("server stopped: %v", err)
	}
}
