package healthcheck

import (
	"context"
	"sync"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"github.com/mileusna/crontab"
)

const (
	ComponentCatalog = "catalog"
	ComponentCache   = "cache"

	checkTimeout = 10 * time.Second
)

type Status struct {
	Healthy   bool              `json:"healthy"`
	Failures  map[string]string `json:"failures,omitempty"`
	CheckedAt time.Time         `json:"checked_at"`
}

type HealthcheckCrontabService struct {
	source catalog.Source
	cache  cache.CacheService

	mu   sync.RWMutex
	last Status
}

func NewService(source catalog.Source, cacheService cache.CacheService) *HealthcheckCrontabService {
	return &HealthcheckCrontabService{
		source: source,
		cache:  cacheService,
	}
}

func (hs *HealthcheckCrontabService) Start(ctx context.Context, ctab *crontab.Crontab) {
	hs.Check(ctx)
	// Check every 2 minutes instead of every minute
	err := ctab.AddJob("*/2 * * * *", func() {
		hs.Check(ctx)
		environment_variables.EnvironmentVariables.LoadFromEnv()
	})
	if err != nil {
		logger.GetLogger().Errorf("healthcheck: failed to schedule job: %v", err)
	}
}

// Check pings the catalog source and the cache and records the outcome.
func (hs *HealthcheckCrontabService) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status := Status{Healthy: true, CheckedAt: time.Now()}
	fail := func(component string, err error) {
		if status.Failures == nil {
			status.Failures = make(map[string]string)
		}
		status.Healthy = false
		status.Failures[component] = err.Error()
		logger.GetLogger().Warnf("healthcheck: %s unhealthy: %v", component, err)
	}

	if _, err := hs.source.ListSchemas(ctx); err != nil {
		fail(ComponentCatalog, err)
	}
	if err := hs.cache.HealthCheck(ctx); err != nil {
		fail(ComponentCache, err)
	}

	hs.mu.Lock()
	hs.last = status
	hs.mu.Unlock()
	return status
}

// LastStatus returns the most recent result; the zero Status means no check has run.
func (hs *HealthcheckCrontabService) LastStatus() Status {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return hs.last
}
