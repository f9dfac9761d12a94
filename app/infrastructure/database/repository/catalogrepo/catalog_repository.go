package catalogrepo

import (
	"context"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const (
	listSchemasSQL = "SELECT name FROM unnest(public.get_schemas()) WITH ORDINALITY AS t(name, ord) ORDER BY ord"
	listTablesSQL  = "SELECT name FROM unnest(public.get_tables_for_schema(?)) WITH ORDINALITY AS t(name, ord) ORDER BY ord"
)

// CatalogGormRepository answers catalog lookups through the get_schemas and
// get_tables_for_schema database functions.
type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) catalog.Source {
	return &CatalogGormRepository{
		db: db,
	}
}

func (r *CatalogGormRepository) ListSchemas(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.WithContext(ctx).Clauses(dbresolver.Read).Raw(listSchemasSQL).Scan(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *CatalogGormRepository) ListTables(ctx context.Context, schema string) ([]string, error) {
	names := []string{}
	if err := r.db.WithContext(ctx).Clauses(dbresolver.Read).Raw(listTablesSQL, schema).Scan(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
