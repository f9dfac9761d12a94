package main

import (
	"fmt"
	"os"
	"strings"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/infrastructure/catalogsource"
	"buildplate.dev/plate-api-gateway/app/infrastructure/database"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openSource builds the catalog source from the bound flags. Tests replace it.
var openSource = func() (catalog.Source, error) {
	opts := catalogsource.Options{
		Kind:        viper.GetString("source"),
		SupabaseURL: viper.GetString("supabase-url"),
		SupabaseKey: viper.GetString("supabase-key"),
	}
	if strings.EqualFold(opts.Kind, catalogsource.SourceSupabase) {
		return catalogsource.New(opts, nil)
	}
	db, err := database.Open(viper.GetString("dsn"), "")
	if err != nil {
		return nil, err
	}
	return catalogsource.New(opts, db)
}

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "inspects the schemas and tables of a database",
	Long:          "inspects the schemas and tables of a postgres or supabase database, and exports catalog snapshots",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// stdout belongs to the command output
		logger.GetLogger().SetOutput(os.Stderr)
	},
}

func init() {
	viper.SetEnvPrefix("CATALOGCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().StringP("source", "s", catalogsource.SourcePostgres, "Catalog source: postgres or supabase")
	rootCmd.PersistentFlags().String("dsn", "", "Postgres DSN")
	rootCmd.PersistentFlags().String("supabase-url", "", "Supabase project URL")
	rootCmd.PersistentFlags().String("supabase-key", "", "Supabase anon key")
	for _, name := range []string{"source", "dsn", "supabase-url", "supabase-key"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func newCatalogCache() (*catalog.CatalogCache, error) {
	source, err := openSource()
	if err != nil {
		return nil, fmt.Errorf("could not open catalog source:%w", err)
	}
	return catalog.NewCatalogCache(source), nil
}
