package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	flowcanvas "github.com/aretw0/flowcanvas"
	"github.com/aretw0/flowcanvas/internal/presentation/tui"
	"github.com/aretw0/flowcanvas/pkg/adapters/file"
	"github.com/aretw0/flowcanvas/pkg/domain"
)

// RunWatch re-runs the workflow at opts.Path every time the file changes, until
// ctx is done. Failed runs and broken documents are reported and waited out.
func RunWatch(ctx context.Context, eng *Engine, opts RunOptions, out io.Writer) error {
	tui.PrintBanner(out, flowcanvas.Version)

	w := file.NewWatcher(opts.Path)
	w.Logger = eng.Logger
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	eng.Logger.Info("Starting Watcher", "path", opts.Path)
	printSystemMessage(out, "Watching '%s'.", opts.Path)

	var prev *domain.RunResult
	for {
		result, err := RunOnce(ctx, eng, opts, out)
		if ctx.Err() != nil {
			printSystemMessage(out, "Watch stopped: %s.", stopReason(ctx))
			return nil
		}
		switch {
		case result == nil:
			printSystemMessage(out, "Cannot run '%s': %v", opts.Path, err)
		case err != nil && !errors.Is(err, domain.ErrNodeExecutionFailed):
			printSystemMessage(out, "Run stopped: %v", err)
		}

		if result != nil {
			if prev != nil {
				if diff := domain.Diff(prev, result); diff != nil {
					printSystemMessage(out, "Changed since last run: %s", strings.Join(diff.ChangedNodes(), ", "))
				} else {
					printSystemMessage(out, "No changes since last run.")
				}
			}
			prev = result
		}

		printSystemMessage(out, "Waiting for changes...")
		select {
		case <-ctx.Done():
			printSystemMessage(out, "Watch stopped: %s.", stopReason(ctx))
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			eng.Logger.Info("Change detected, re-running", "path", opts.Path)
			printSystemMessage(out, "Change detected in '%s'.", opts.Path)
		}
	}
}
