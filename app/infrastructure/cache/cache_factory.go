package cache

import (
	"strings"

	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
)

// NewCacheService creates a cache service based on configuration
func NewCacheService() CacheService {
	cacheType := strings.ToLower(environment_variables.EnvironmentVariables.CACHE_TYPE)

	switch cacheType {
	case "redis":
		return NewRedisCacheService()
	case "none", "noop":
		return &NoOpCacheService{}
	case "memory":
		return NewMemoryCacheService()
	case "", "valkey":
		return NewValkeyCacheService()
	default:
		logger.GetLogger().Warnf("unknown CACHE_TYPE %q, falling back to valkey", cacheType)
		return NewValkeyCacheService()
	}
}
