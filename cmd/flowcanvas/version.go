package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	flowcanvas "github.com/aretw0/flowcanvas"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowcanvas",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flowcanvas version %s\n", strings.TrimSpace(flowcanvas.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
