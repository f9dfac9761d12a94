package catalogsource

import (
	"fmt"
	"strings"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/infrastructure/database/repository/catalogrepo"
	"buildplate.dev/plate-api-gateway/app/utils/httpclients/supabase"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"gorm.io/gorm"
)

const (
	SourcePostgres = "postgres"
	SourceSupabase = "supabase"
)

type Options struct {
	Kind        string
	SupabaseURL string
	SupabaseKey string
}

// New returns the catalog source named by opts.Kind. db is only used for postgres.
func New(opts Options, db *gorm.DB) (catalog.Source, error) {
	switch strings.ToLower(opts.Kind) {
	case "", SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres catalog source needs a database connection")
		}
		return catalogrepo.NewCatalogGormRepository(db), nil
	case SourceSupabase:
		if opts.SupabaseURL == "" {
			return nil, fmt.Errorf("supabase catalog source needs SUPABASE_URL")
		}
		return supabase.NewClient(opts.SupabaseURL, opts.SupabaseKey), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", opts.Kind)
	}
}

// NewFromEnv is the server provider.
func NewFromEnv(db *gorm.DB) (catalog.Source, error) {
	env := environment_variables.EnvironmentVariables
	return New(Options{
		Kind:        env.CATALOG_SOURCE,
		SupabaseURL: env.SUPABASE_URL,
		SupabaseKey: env.SUPABASE_ANON_KEY,
	}, db)
}
