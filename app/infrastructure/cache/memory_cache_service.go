package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"github.com/google/uuid"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCacheService keeps entries in process memory. It backs single-instance
// development setups and the catalogctl CLI.
type MemoryCacheService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCacheService() *MemoryCacheService {
	return &MemoryCacheService{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCacheService) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, jsonValue, expiration)
	return nil
}

func (m *MemoryCacheService) setLocked(key string, value []byte, expiration time.Duration) {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}
	m.entries[key] = entry
}

// getLocked drops the entry when it has expired.
func (m *MemoryCacheService) getLocked(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryCacheService) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	entry, ok := m.getLocked(key)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return json.Unmarshal(entry.value, dest)
}

func (m *MemoryCacheService) GetWithFallback(ctx context.Context, key string, dest any, fallback func() (any, error), expiration time.Duration) error {
	err := m.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	value, err := fallback()
	if err != nil {
		return fmt.Errorf("fallback function failed: %w", err)
	}

	if err := m.Set(ctx, key, value, expiration); err != nil {
		logger.GetLogger().Errorf("Failed to cache value: %v", err)
	}

	return copyValue(value, dest)
}

func (m *MemoryCacheService) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCacheService) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.getLocked(key)
	return ok, nil
}

// Lock holds name until the returned func runs or ttl passes.
func (m *MemoryCacheService) Lock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getLocked(name); ok {
		return nil, fmt.Errorf("%w: %s", ErrLockTaken, name)
	}
	token, err := json.Marshal(uuid.NewString())
	if err != nil {
		return nil, err
	}
	m.setLocked(name, token, ttl)
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// after expiry the name may belong to someone else
			if entry, ok := m.getLocked(name); ok && string(entry.value) == string(token) {
				delete(m.entries, name)
			}
		})
	}, nil
}

func (m *MemoryCacheService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryCacheService) HealthCheck(ctx context.Context) error {
	return nil
}
