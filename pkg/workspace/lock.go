package workspace

import (
	"context"
	"fmt"
	"sync"
)

// lockEntry holds the mutex and the number of goroutines waiting on or holding it.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type lockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// acquire gets or creates an entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (t *lockTable) acquire(id string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries == nil {
		t.entries = make(map[string]*lockEntry)
	}
	entry, ok := t.entries[id]
	if !ok {
		entry = &lockEntry{}
		t.entries[id] = entry
	}
	entry.refs++
	return entry
}

// release drops the entry once nobody references it.
func (t *lockTable) release(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(t.entries, id)
	}
}

func (t *lockTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// WithLock runs fn while holding the lock for workflow id.
func (w *Workspace) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := w.locks.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		w.locks.release(id)
	}()

	if w.locker != nil {
		unlock, err := w.locker.Lock(ctx, id, w.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The caller's ctx may already be canceled; the lock must still go.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				w.logger.Warn("failed to release distributed lock, it will expire via TTL",
					"workflow_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
