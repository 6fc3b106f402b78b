package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/flowcanvas/internal/presentation/tui"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/graph"
	"github.com/aretw0/flowcanvas/pkg/schema"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Path     string
	Parallel int
	JSON     bool
	Watch    bool
	Strict   bool
}

// Execute handles the run command, dispatching to a single run or watch mode.
func Execute(ctx context.Context, eng *Engine, opts RunOptions, out io.Writer) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(ctx, eng, opts, out)
	}
	_, err := RunOnce(ctx, eng, opts, out)
	if errors.Is(err, domain.ErrRunCanceled) {
		return fmt.Errorf("%w (%s)", err, stopReason(ctx))
	}
	return err
}

// loadSnapshot reads and validates a workflow document, filling node data with
// definition defaults.
func loadSnapshot(eng *Engine, path string, strict bool) (*domain.Workflow, domain.Snapshot, error) {
	wf, err := schema.LoadFile(path)
	if err != nil {
		return nil, domain.Snapshot{}, err
	}
	var vopts []schema.Option
	if strict || eng.Config.StrictPorts {
		vopts = append(vopts, schema.Strict())
	}
	if err := schema.Validate(wf, eng.Catalog, vopts...); err != nil {
		return wf, domain.Snapshot{}, err
	}
	g, err := graph.FromSnapshot(eng.Catalog, wf.Snapshot(), eng.GraphOptions(strict)...)
	if err != nil {
		return wf, domain.Snapshot{}, err
	}
	return wf, g.Snapshot(), nil
}

// RunOnce loads the workflow at opts.Path, runs it and writes the report.
// The result is nil only when the document could not be loaded.
func RunOnce(ctx context.Context, eng *Engine, opts RunOptions, out io.Writer) (*domain.RunResult, error) {
	wf, snap, err := loadSnapshot(eng, opts.Path, opts.Strict)
	if err != nil {
		return nil, err
	}

	result, runErr := eng.Scheduler(opts.Parallel).Run(ctx, snap)

	if err := writeReport(out, wf, eng, result, opts.JSON); err != nil {
		return result, err
	}
	return result, runErr
}

func writeReport(out io.Writer, wf *domain.Workflow, eng *Engine, result *domain.RunResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	rendered, err := rendererFor(out)(tui.Report(wf, eng.Catalog, result))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
