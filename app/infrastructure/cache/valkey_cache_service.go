package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// releases the lock only if it still holds our token
var unlockScript = valkey.NewLuaScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`)

// ValkeyCacheService provides caching functionality using Valkey
type ValkeyCacheService struct {
	client valkey.Client
}

// parseValkeyURL parses a Valkey URL and returns address, password, database, and error
func parseValkeyURL(valkeyURL string) (address, password string, database int, err error) {
	database = -1 // -1 means no database specified

	if !strings.Contains(valkeyURL, "://") {
		return valkeyURL, "", -1, nil
	}

	u, err := url.Parse(valkeyURL)
	if err != nil {
		return "", "", -1, fmt.Errorf("invalid URL format: %w", err)
	}

	address = u.Host
	if address == "" {
		return "", "", -1, fmt.Errorf("no host specified in URL")
	}

	if u.User != nil {
		password, _ = u.User.Password()
	}

	if u.Path != "" && u.Path != "/" {
		dbStr := strings.TrimPrefix(u.Path, "/")
		if dbStr != "" {
			if db, parseErr := strconv.Atoi(dbStr); parseErr == nil {
				database = db
			}
		}
	}

	return address, password, database, nil
}

// NewValkeyCacheService creates a new Valkey cache service
func NewValkeyCacheService() CacheService {
	valkeyURL := environment_variables.EnvironmentVariables.CACHE_URL
	if valkeyURL == "" {
		valkeyURL = "valkey://localhost:6379"
	}

	address, password, db, err := parseValkeyURL(valkeyURL)
	if err != nil {
		logger.GetLogger().Errorf("invalid valkey url, caching disabled: %v", err)
		return &NoOpCacheService{}
	}

	opts := valkey.ClientOption{
		InitAddress: []string{address},
	}
	if password != "" {
		opts.Password = password
	}
	if db != -1 {
		opts.SelectDB = db
	}

	if environment_variables.EnvironmentVariables.CACHE_PASSWORD != "" {
		opts.Password = environment_variables.EnvironmentVariables.CACHE_PASSWORD
	}
	if environment_variables.EnvironmentVariables.CACHE_DB != "" {
		if db, err := strconv.Atoi(environment_variables.EnvironmentVariables.CACHE_DB); err == nil {
			opts.SelectDB = db
		}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		logger.GetLogger().Errorf("unable to connect to valkey, caching disabled: %v", err)
		return &NoOpCacheService{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.GetLogger().Errorf("valkey ping failed, caching disabled: %v", err)
		client.Close()
		return &NoOpCacheService{}
	}

	return &ValkeyCacheService{
		client: client,
	}
}

// Set stores a value in Valkey with an expiration time
func (v *ValkeyCacheService) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if expiration <= 0 {
		return v.client.Do(ctx, v.client.B().Set().Key(key).Value(string(jsonValue)).Build()).Error()
	}
	return v.client.Do(ctx, v.client.B().Set().Key(key).Value(string(jsonValue)).PxMilliseconds(expiration.Milliseconds()).Build()).Error()
}

// Get retrieves a value from Valkey
func (v *ValkeyCacheService) Get(ctx context.Context, key string, dest any) error {
	result := v.client.Do(ctx, v.client.B().Get().Key(key).Build())
	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return fmt.Errorf("failed to get value: %w", err)
	}

	val, err := result.ToString()
	if err != nil {
		return fmt.Errorf("failed to convert result to string: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

// GetWithFallback retrieves a value from Valkey, or executes fallback function if not found
func (v *ValkeyCacheService) GetWithFallback(ctx context.Context, key string, dest any, fallback func() (any, error), expiration time.Duration) error {
	err := v.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	value, err := fallback()
	if err != nil {
		return fmt.Errorf("fallback function failed: %w", err)
	}

	if err := v.Set(ctx, key, value, expiration); err != nil {
		logger.GetLogger().Errorf("Failed to cache value: %v", err)
	}

	return copyValue(value, dest)
}

// Delete removes a key from Valkey synchronously (blocking)
func (v *ValkeyCacheService) Delete(ctx context.Context, key string) error {
	return v.client.Do(ctx, v.client.B().Del().Key(key).Build()).Error()
}

// Exists checks if a key exists in Valkey
func (v *ValkeyCacheService) Exists(ctx context.Context, key string) (bool, error) {
	result := v.client.Do(ctx, v.client.B().Exists().Key(key).Build())
	if result.Error() != nil {
		return false, fmt.Errorf("failed to check key existence: %w", result.Error())
	}

	count, err := result.AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to parse exists result: %w", err)
	}

	return count > 0, nil
}

// Lock sets name to a random token with NX; only the holder of the token can release it.
func (v *ValkeyCacheService) Lock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	err := v.client.Do(ctx, v.client.B().Set().Key(name).Value(token).Nx().PxMilliseconds(ttl.Milliseconds()).Build()).Error()
	if valkey.IsValkeyNil(err) {
		return nil, fmt.Errorf("%w: %s", ErrLockTaken, name)
	}
	if err != nil {
		return nil, fmt.Errorf("err from valkey:%w", err)
	}
	return func() {
		resp := unlockScript.Exec(context.Background(), v.client, []string{name}, []string{token})
		if err := resp.Error(); err != nil {
			logger.GetLogger().Warnf("failed to release lock %s: %v", name, err)
		}
	}, nil
}

// Close closes the Valkey connection
func (v *ValkeyCacheService) Close() error {
	v.client.Close()
	return nil
}

// HealthCheck verifies Valkey connectivity
func (v *ValkeyCacheService) HealthCheck(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Ping().Build()).Error()
}
