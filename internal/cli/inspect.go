package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/flowcanvas/internal/presentation/graph"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/schema"
)

// Validate checks the document at path and prints every problem found.
// The returned error is nil only for a valid document.
func Validate(eng *Engine, path string, strict bool, out io.Writer) error {
	_, _, err := loadSnapshot(eng, path, strict)
	if err == nil {
		fmt.Fprintln(out, "Workflow is valid! ✅")
		return nil
	}
	problems := schema.ValidationErrors(err)
	if len(problems) == 0 {
		return err
	}
	for _, p := range problems {
		fmt.Fprintf(out, "  - %v\n", p)
	}
	return fmt.Errorf("%d validation errors", len(problems))
}

// Graph prints the workflow as a Mermaid diagram. With run set the workflow is
// executed first and node statuses are drawn as classes.
func Graph(ctx context.Context, eng *Engine, path string, run bool, out io.Writer) error {
	wf, snap, err := loadSnapshot(eng, path, false)
	if err != nil {
		return err
	}
	var result *domain.RunResult
	if run {
		// A failed run still has statuses worth drawing.
		result, _ = eng.Scheduler(0).Run(ctx, snap)
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(wf.Snapshot(), eng.Catalog, result))
	return err
}

// PrintCatalog lists the node types known to the engine.
func PrintCatalog(eng *Engine, asJSON bool, out io.Writer) error {
	defs := eng.Catalog.List()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	}

	var sb strings.Builder
	sb.WriteString("# Node types\n\n| Type | Name | Inputs | Outputs | Executor |\n|---|---|---|---|---|\n")
	for _, d := range defs {
		executor := "✔"
		if !eng.Registry.Has(d.Type) {
			executor = "✘"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n", d.Type, d.Name, portList(d.Inputs), portList(d.Outputs), executor)
	}
	rendered, err := rendererFor(out)(sb.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

func portList(ps []domain.Port) string {
	if len(ps) == 0 {
		return "-"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("%s:%s", p.ID, p.Kind)
	}
	return strings.Join(parts, ", ")
}
