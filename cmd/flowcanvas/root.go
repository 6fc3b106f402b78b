package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowcanvas/internal/cli"
	"github.com/aretw0/flowcanvas/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "flowcanvas",
	Short: "flowcanvas runs node-based workflow graphs",
	Long: `flowcanvas edits and executes workflow graphs: typed nodes from a catalog,
wired port to port, run once in dependency order.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// loadEngine reads the config and builds the engine. quiet silences logs unless --debug.
func loadEngine(cmd *cobra.Command, quiet bool) (*cli.Engine, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Lookup("strict") != nil && cmd.Flags().Changed("strict") {
		cfg.StrictPorts, _ = cmd.Flags().GetBool("strict")
	}
	if cmd.Flags().Lookup("parallel") != nil && cmd.Flags().Changed("parallel") {
		cfg.Parallelism, _ = cmd.Flags().GetInt("parallel")
		if cfg.Parallelism < 1 {
			return nil, fmt.Errorf("--parallel must be at least 1")
		}
	}

	logger := cli.NewLogger(cfg.Log, debug, quiet)
	return cli.NewEngine(cfg, logger)
}
