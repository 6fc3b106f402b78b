package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowcanvas/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow>",
	Short: "Run a workflow document",
	Long: `Runs every node of the workflow once, in dependency order, and prints a report.
The run halts at the first failing node.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd, true)
		if err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("watch")
		jsonMode, _ := cmd.Flags().GetBool("json")
		strict, _ := cmd.Flags().GetBool("strict")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Execute(ctx, eng, cli.RunOptions{
			Path:   args[0],
			JSON:   jsonMode,
			Watch:  watch,
			Strict: strict,
		}, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("parallel", 1, "Maximum number of nodes running at once")
	runCmd.Flags().Bool("json", false, "Print the run result as JSON")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run whenever the file changes")
	runCmd.Flags().Bool("strict", false, "Check port names and kinds")
}
