package catalog

import (
	"context"
	"time"
)

// Snapshot is every schema of a source with its tables, in source order.
type Snapshot struct {
	TakenAt time.Time           `json:"taken_at"`
	Order   []string            `json:"order"`
	Schemas map[string][]string `json:"schemas"`
}

// TakeSnapshot walks all schemas through c, so tables already cached are not fetched again.
// The first failure aborts the walk.
func TakeSnapshot(ctx context.Context, c *CatalogCache) (*Snapshot, error) {
	schemas, err := c.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		TakenAt: time.Now().UTC(),
		Order:   schemas,
		Schemas: make(map[string][]string, len(schemas)),
	}
	for _, schema := range schemas {
		tables, err := c.FetchTables(ctx, schema)
		if err != nil {
			return nil, err
		}
		snap.Schemas[schema] = tables
	}
	return snap, nil
}
