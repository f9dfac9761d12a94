package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds one remote table lookup shared by all waiters.
const DefaultFetchTimeout = 30 * time.Second

type CatalogCache struct {
	source       Source
	fetchTimeout time.Duration

	mu     sync.RWMutex
	tables map[string][]string

	inflight singleflight.Group
}

func NewCatalogCache(source Source) *CatalogCache {
	return NewCatalogCacheWithTimeout(source, DefaultFetchTimeout)
}

func NewCatalogCacheWithTimeout(source Source, fetchTimeout time.Duration) *CatalogCache {
	return &CatalogCache{
		source:       source,
		fetchTimeout: fetchTimeout,
		tables:       make(map[string][]string),
	}
}

// ListSchemas always asks the source.
func (c *CatalogCache) ListSchemas(ctx context.Context) ([]string, error) {
	schemas, err := c.source.ListSchemas(ctx)
	if err != nil {
		return nil, newFetchError(OpSchemas, "", err)
	}
	return schemas, nil
}

// FetchTables returns the tables of schema, calling the source at most once per schema
// until a call succeeds. Concurrent misses for the same schema share one call.
func (c *CatalogCache) FetchTables(ctx context.Context, schema string) ([]string, error) {
	if schema == "" {
		return nil, ErrEmptySchema
	}
	if tables, ok := c.lookup(schema); ok {
		return tables, nil
	}

	ch := c.inflight.DoChan(schema, func() (any, error) {
		// a waiter may have lost the race against a finished fetch
		if tables, ok := c.lookup(schema); ok {
			return tables, nil
		}
		// detached from the first caller, but still bounded so a hung source frees the key
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		tables, err := c.source.ListTables(fetchCtx, schema)
		if err != nil {
			return nil, err
		}
		stored := slices.Clone(tables)
		if stored == nil {
			stored = []string{}
		}
		c.mu.Lock()
		c.tables[schema] = stored
		c.mu.Unlock()
		return stored, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, newFetchError(OpTables, schema, res.Err)
		}
		return slices.Clone(res.Val.([]string)), nil
	}
}

func (c *CatalogCache) lookup(schema string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tables, ok := c.tables[schema]
	if !ok {
		return nil, false
	}
	return slices.Clone(tables), true
}

func (c *CatalogCache) Cached(schema string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[schema]
	return ok
}

// Len is the number of schemas held.
func (c *CatalogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
