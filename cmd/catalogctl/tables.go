package main

import (
	"fmt"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [schema]",
	Short: "lists the tables of a schema",
	Long:  "lists the tables of a schema, or of the default schema when none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := newCatalogCache()
		if err != nil {
			return err
		}

		var schema string
		if len(args) == 1 {
			schema = args[0]
		} else {
			schemas, err := cache.ListSchemas(cmd.Context())
			if err != nil {
				return err
			}
			var ok bool
			if schema, ok = catalog.SelectDefaultSchema(schemas); !ok {
				return fmt.Errorf("no schemas found")
			}
		}

		tables, err := cache.FetchTables(cmd.Context(), schema)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tables) == 0 {
			fmt.Fprintln(out, "No tables found in this schema")
			return nil
		}
		for _, table := range tables {
			fmt.Fprintln(out, table)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
