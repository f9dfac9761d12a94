package main

import (
	"fmt"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "lists the schemas",
	Long:  "lists the schemas of the source, marking the one selected by default with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := newCatalogCache()
		if err != nil {
			return err
		}
		schemas, err := cache.ListSchemas(cmd.Context())
		if err != nil {
			return err
		}
		selected, _ := catalog.SelectDefaultSchema(schemas)
		out := cmd.OutOrStdout()
		for _, schema := range schemas {
			marker := " "
			if schema == selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, schema)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
