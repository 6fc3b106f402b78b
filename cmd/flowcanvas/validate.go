package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowcanvas/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow>",
	Short: "Check a workflow document for consistency",
	Long:  `Reports unknown node types, duplicate ids, dangling edges and, with --strict, port mismatches.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd, true)
		if err != nil {
			return err
		}
		strict, _ := cmd.Flags().GetBool("strict")
		return cli.Validate(eng, args[0], strict, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Check port names and kinds")
}
