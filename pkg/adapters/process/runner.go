// Package process executes custom node types as local processes.
//
// Each registered node type maps to one allow-listed command. The node's inputs
// and data reach the process two ways: as a JSON document on stdin
// ({"inputs": {...}, "data": {...}}) and as FLOWCANVAS_IN_<PORT> /
// FLOWCANVAS_DATA_<KEY> environment variables. A JSON object on stdout becomes
// the output bundle; anything else is bound to the "out" port.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/registry"
)

// DefaultGracePeriod is how long a canceled process may take to exit after
// being interrupted before it is killed.
const DefaultGracePeriod = 5 * time.Second

// DefaultOutput receives stdout that is not a JSON object.
const DefaultOutput = "out"

// Runner executes registered commands.
type Runner struct {
	registry map[string]ToolConfig
	baseDir  string
	grace    time.Duration
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ToolConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			tool.Name = name
			r.registry[name] = tool
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.grace = d
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]ToolConfig),
		grace:    DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list under a node type.
func (r *Runner) Register(nodeType, command string, args ...string) {
	r.registry[nodeType] = ToolConfig{Name: nodeType, Command: command, Args: args}
}

// Types lists the registered node types in sorted order.
func (r *Runner) Types() []string {
	types := make([]string, 0, len(r.registry))
	for t := range r.registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Bind registers an executor for every allow-listed node type.
func (r *Runner) Bind(reg *registry.Registry) {
	for _, t := range r.Types() {
		nodeType := t
		reg.Register(nodeType, func(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
			return r.Execute(ctx, nodeType, inputs, data)
		})
	}
}

type request struct {
	Inputs map[string]any `json:"inputs"`
	Data   map[string]any `json:"data"`
}

// Execute runs the command bound to nodeType.
// Arguments never reach the command line, only the environment and stdin.
func (r *Runner) Execute(ctx context.Context, nodeType string, inputs, data map[string]any) (map[string]any, error) {
	tool, ok := r.registry[nodeType]
	if !ok {
		return nil, fmt.Errorf("process tool not registered: %s", nodeType)
	}

	stdin, err := json.Marshal(request{Inputs: inputs, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, tool.Command, tool.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(stdin)
	if runtime.GOOS != "windows" {
		cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	}
	cmd.WaitDelay = r.grace

	env := cmd.Environ()
	for k, v := range tool.Environment {
		env = append(env, k+"="+v)
	}
	env = append(env, encodeEnv("FLOWCANVAS_IN_", inputs)...)
	env = append(env, encodeEnv("FLOWCANVAS_DATA_", data)...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := logging.FromContext(ctx)
	logger.Debug("process start", "command", tool.Command, "node_type", nodeType)

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("process %s interrupted: %w", tool.Command, ctxErr)
		}
		return nil, fmt.Errorf("execution failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	logger.Debug("process end", "command", tool.Command, "duration", time.Since(start))

	return decodeOutput(stdout.Bytes()), nil
}

// encodeEnv flattens values into KEY=value strings. Scalars are printed as is,
// everything else as JSON.
func encodeEnv(prefix string, values map[string]any) []string {
	env := make([]string, 0, len(values))
	for k, v := range values {
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		case nil:
			val = ""
		default:
			if b, err := json.Marshal(v); err == nil {
				val = string(b)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, prefix+envKey(k)+"="+val)
	}
	sort.Strings(env)
	return env
}

func envKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, k)
}

func decodeOutput(stdout []byte) map[string]any {
	trimmed := strings.TrimSpace(string(stdout))
	if strings.HasPrefix(trimmed, "{") {
		var bundle map[string]any
		if err := json.Unmarshal([]byte(trimmed), &bundle); err == nil {
			return bundle
		}
	}
	return map[string]any{DefaultOutput: trimmed}
}
