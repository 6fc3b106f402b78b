package domain

import "time"

// ExecutionStatus is the per-node status for the current run.
type ExecutionStatus string

const (
	StatusIdle      ExecutionStatus = "idle"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// ErrorKey is the output key under which a failed node records its error message.
const ErrorKey = "error"

// RunResult captures what one run did to every node. It is ephemeral and never part of
// the durable workflow document.
type RunResult struct {
	// Order is the computed topological order. Nil when the graph was rejected as cyclic.
	Order []string `json:"order"`

	Statuses map[string]ExecutionStatus `json:"statuses"`
	Inputs   map[string]map[string]any  `json:"inputs"`
	Outputs  map[string]map[string]any  `json:"outputs"`

	// FailedNode is the id of the node that halted the run, if any.
	FailedNode string `json:"failedNode,omitempty"`
	// Error is the message of the error that ended the run, if any.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// NewRunResult returns a result in which every node of the snapshot is idle.
func NewRunResult(snap Snapshot) *RunResult {
	r := &RunResult{
		Statuses: make(map[string]ExecutionStatus, len(snap.Nodes)),
		Inputs:   make(map[string]map[string]any),
		Outputs:  make(map[string]map[string]any),
	}
	for _, n := range snap.Nodes {
		r.Statuses[n.ID] = StatusIdle
	}
	return r
}

// Status returns the status of a node, idle when unknown.
func (r *RunResult) Status(nodeID string) ExecutionStatus {
	if s, ok := r.Statuses[nodeID]; ok {
		return s
	}
	return StatusIdle
}

// Clone returns a deep copy of the result (bundles are copied one level deep).
func (r *RunResult) Clone() *RunResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Order = append([]string(nil), r.Order...)
	c.Statuses = make(map[string]ExecutionStatus, len(r.Statuses))
	for k, v := range r.Statuses {
		c.Statuses[k] = v
	}
	c.Inputs = make(map[string]map[string]any, len(r.Inputs))
	for k, v := range r.Inputs {
		c.Inputs[k] = CloneData(v)
	}
	c.Outputs = make(map[string]map[string]any, len(r.Outputs))
	for k, v := range r.Outputs {
		c.Outputs[k] = CloneData(v)
	}
	return &c
}

// Duration returns how long the run took.
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
