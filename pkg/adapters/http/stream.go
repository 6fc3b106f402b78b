package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

// SSE event names.
const (
	EventRunStart   = "run_start"
	EventNodeStatus = "node_status"
	EventRunEnd     = "run_end"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data []byte
}

// StreamManager fans run events out to the SSE clients of each workflow.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{} // workflow id -> channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a client for workflowID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(workflowID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 32)
	if _, ok := sm.subscribers[workflowID]; !ok {
		sm.subscribers[workflowID] = make(map[chan Event]struct{})
	}
	sm.subscribers[workflowID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[workflowID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, workflowID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of clients listening to workflowID.
func (sm *StreamManager) Subscribers(workflowID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[workflowID])
}

// Broadcast sends ev to every client of workflowID. Slow clients lose events.
func (sm *StreamManager) Broadcast(workflowID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[workflowID] {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping event", "workflow_id", workflowID, "event", ev.Name)
		}
	}
}

func (sm *StreamManager) publish(ctx context.Context, name string, payload any) {
	id := workspace.WorkflowID(ctx)
	if id == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("SSE: failed to encode event", "event", name, "err", err)
		return
	}
	sm.Broadcast(id, Event{Name: name, Data: data})
}

// runEndPayload carries the run error as text, which RunEvent does not serialize.
type runEndPayload struct {
	*domain.RunEvent
	Error string `json:"error,omitempty"`
}

// Hooks publishes run lifecycle events of workspace runs.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			sm.publish(ctx, EventRunStart, e)
		},
		OnNodeStatus: func(ctx context.Context, e *domain.NodeStatusEvent) {
			sm.publish(ctx, EventNodeStatus, e)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			p := runEndPayload{RunEvent: e}
			if e.Err != nil {
				p.Error = e.Err.Error()
			}
			sm.publish(ctx, EventRunEnd, p)
		},
	}
}
