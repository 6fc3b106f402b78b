package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowcanvas/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph <workflow>",
	Short: "Export the workflow as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd, true)
		if err != nil {
			return err
		}
		run, _ := cmd.Flags().GetBool("run")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Graph(ctx, eng, args[0], run, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("run", false, "Run the workflow and color nodes by status")
}
