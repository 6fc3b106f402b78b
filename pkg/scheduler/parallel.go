package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

type completion struct {
	id  string
	err error
}

// executeParallel dispatches ready nodes onto at most r.parallelism workers.
// Ready nodes are dispatched in insertion order. After the first failure (or
// cancellation) nothing new is dispatched; nodes already running finish and keep
// their status, everything else stays idle.
func (r *run) executeParallel(ctx context.Context) error {
	nodes := r.nodesByID()
	indegree := make(map[string]int, len(r.plan.indegree))
	for id, d := range r.plan.indegree {
		indegree[id] = d
	}

	var ready []string
	for _, n := range r.snap.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	// Workers never wait on the coordinator: the channel holds every possible completion.
	done := make(chan completion, len(r.snap.Nodes))
	var g errgroup.Group
	g.SetLimit(r.parallelism)

	var firstErr error
	inflight := 0
	for {
		// A slot is reserved before the failure check so that g.Go never blocks;
		// a blocked dispatch could start a node after a sibling has failed.
		for len(ready) > 0 && inflight < r.parallelism && firstErr == nil && !r.halted() {
			if err := ctx.Err(); err != nil {
				firstErr = fmt.Errorf("%w: %w", domain.ErrRunCanceled, err)
				break
			}
			id := ready[0]
			ready = ready[1:]
			node := nodes[id]
			inflight++
			g.Go(func() error {
				done <- completion{id: node.ID, err: r.runNode(ctx, node)}
				return nil
			})
		}
		if inflight == 0 {
			break
		}

		c := <-done
		inflight--
		if c.err != nil {
			if firstErr == nil {
				firstErr = c.err
			}
			continue
		}
		var unlocked []string
		for _, e := range r.plan.outgoing[c.id] {
			indegree[e.Target]--
			if indegree[e.Target] == 0 {
				unlocked = append(unlocked, e.Target)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sort.SliceStable(ready, func(i, j int) bool {
				return r.plan.index[ready[i]] < r.plan.index[ready[j]]
			})
		}
	}

	_ = g.Wait()
	return firstErr
}

// halted reports whether a node has already failed. It is checked before every
// dispatch so that a failure stops new work even before its completion is received.
func (r *run) halted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result.FailedNode != ""
}

func isCycle(err error) bool {
	return errors.Is(err, domain.ErrCycleDetected)
}
