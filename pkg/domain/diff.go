package domain

import (
	"reflect"
	"sort"
)

// RunDiff represents the changes between two run results of the same workflow.
// It is designed to be serialized to JSON for partial updates on the client.
type RunDiff struct {
	// Statuses contains only nodes whose status changed (or appeared).
	Statuses map[string]ExecutionStatus `json:"statuses,omitempty"`

	// Outputs contains only nodes whose recorded output changed.
	// A removed node is present with a nil value.
	Outputs map[string]map[string]any `json:"outputs,omitempty"`

	// Failed is set when the failing node changed between the runs.
	Failed *string `json:"failed,omitempty"`
}

// Diff calculates the difference between oldRun and newRun.
// If oldRun is nil, it returns a diff representing the entire newRun (initial load).
// It returns nil when nothing changed.
func Diff(oldRun, newRun *RunResult) *RunDiff {
	if newRun == nil {
		return nil
	}
	if oldRun == nil {
		oldRun = &RunResult{}
	}

	diff := &RunDiff{
		Statuses: diffStatuses(oldRun, newRun),
		Outputs:  diffOutputs(oldRun, newRun),
	}
	if oldRun.FailedNode != newRun.FailedNode {
		failed := newRun.FailedNode
		diff.Failed = &failed
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffStatuses(old, new *RunResult) map[string]ExecutionStatus {
	delta := make(map[string]ExecutionStatus)
	for id, status := range new.Statuses {
		if prev, ok := old.Statuses[id]; !ok || prev != status {
			delta[id] = status
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffOutputs(old, new *RunResult) map[string]map[string]any {
	delta := make(map[string]map[string]any)
	for id, out := range new.Outputs {
		if prev, ok := old.Outputs[id]; !ok || !reflect.DeepEqual(prev, out) {
			delta[id] = out
		}
	}
	for id := range old.Outputs {
		if _, ok := new.Outputs[id]; !ok {
			delta[id] = nil
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *RunDiff) IsEmpty() bool {
	return len(d.Statuses) == 0 && len(d.Outputs) == 0 && d.Failed == nil
}

// ChangedNodes returns the sorted ids of every node touched by the diff.
func (d *RunDiff) ChangedNodes() []string {
	seen := make(map[string]struct{})
	for id := range d.Statuses {
		seen[id] = struct{}{}
	}
	for id := range d.Outputs {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
