package main

import (
	"context"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
)

const warmupTimeout = 30 * time.Second

type DataInitializer struct {
	catalogCache *catalog.CatalogCache
}

func (d *DataInitializer) Install(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()
	return d.warmDefaultSchema(ctx)
}

// warmDefaultSchema loads the tables of the schema a browser opens first.
func (d *DataInitializer) warmDefaultSchema(ctx context.Context) error {
	schemas, err := d.catalogCache.ListSchemas(ctx)
	if err != nil {
		return err
	}
	schema, ok := catalog.SelectDefaultSchema(schemas)
	if !ok {
		logger.GetLogger().Info("catalog has no schemas, nothing to warm")
		return nil
	}
	tables, err := d.catalogCache.FetchTables(ctx, schema)
	if err != nil {
		return err
	}
	logger.GetLogger().Infof("warmed catalog schema %s with %d tables", schema, len(tables))
	return nil
}
