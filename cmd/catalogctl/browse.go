package main

import (
	"fmt"
	"os"

	"buildplate.dev/plate-api-gateway/app/interfaces/tui/catalogbrowser"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "browses the catalog in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fd := os.Stdout.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return fmt.Errorf("browse needs a terminal, use schemas or tables instead")
		}
		cache, err := newCatalogCache()
		if err != nil {
			return err
		}
		return catalogbrowser.Run(cmd.Context(), cache)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
