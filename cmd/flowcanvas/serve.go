package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowcanvas/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the workflow API over HTTP: workflow CRUD, graph edits, runs,
server-sent run events, Mermaid export and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd, false)
		if err != nil {
			return err
		}
		port := eng.Config.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Serve(ctx, eng, port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
