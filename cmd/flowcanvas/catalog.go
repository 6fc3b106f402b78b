package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowcanvas/internal/cli"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the available node types",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd, true)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.PrintCatalog(eng, jsonMode, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().Bool("json", false, "Print definitions as JSON")
}
