package scheduler

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// CycleError reports a graph that has no topological order.
// Remaining lists the nodes that never reached in-degree zero, in insertion order.
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %d node(s) on or behind a cycle: %s",
		domain.ErrCycleDetected, len(e.Remaining), strings.Join(e.Remaining, ", "))
}

// Is makes errors.Is(err, domain.ErrCycleDetected) hold.
func (e *CycleError) Is(target error) bool {
	return target == domain.ErrCycleDetected
}

// plan is the dependency structure of a snapshot, indexed by node id.
type plan struct {
	index    map[string]int
	indegree map[string]int
	incoming map[string][]domain.WorkflowEdge
	outgoing map[string][]domain.WorkflowEdge
}

func newPlan(snap domain.Snapshot) *plan {
	p := &plan{
		index:    make(map[string]int, len(snap.Nodes)),
		indegree: make(map[string]int, len(snap.Nodes)),
		incoming: make(map[string][]domain.WorkflowEdge),
		outgoing: make(map[string][]domain.WorkflowEdge),
	}
	for i, n := range snap.Nodes {
		p.index[n.ID] = i
		p.indegree[n.ID] = 0
	}
	for _, e := range snap.Edges {
		_, okSrc := p.index[e.Source]
		_, okDst := p.index[e.Target]
		if !okSrc || !okDst {
			// Dangling edges cannot constrain the order.
			continue
		}
		p.indegree[e.Target]++
		p.incoming[e.Target] = append(p.incoming[e.Target], e)
		p.outgoing[e.Source] = append(p.outgoing[e.Source], e)
	}
	return p
}

// Order computes a topological order of the snapshot with Kahn's algorithm.
// Nodes that are ready at the same time keep their insertion order. A graph with
// a cycle yields a *CycleError.
func Order(snap domain.Snapshot) ([]string, error) {
	return newPlan(snap).order(snap)
}

func (p *plan) order(snap domain.Snapshot) ([]string, error) {
	indegree := make(map[string]int, len(p.indegree))
	for id, d := range p.indegree {
		indegree[id] = d
	}

	queue := make([]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	sorted := make([]string, 0, len(snap.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)
		for _, e := range p.outgoing[id] {
			indegree[e.Target]--
			if indegree[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
	}

	if len(sorted) != len(snap.Nodes) {
		var remaining []string
		for _, n := range snap.Nodes {
			if indegree[n.ID] > 0 {
				remaining = append(remaining, n.ID)
			}
		}
		return nil, &CycleError{Remaining: remaining}
	}
	return sorted, nil
}
