package ports

import (
	"context"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// WorkflowStore defines the interface for persisting workflow documents.
// Run results are ephemeral and never stored.
type WorkflowStore interface {
	// Save persists the workflow under its ID, replacing any previous version.
	Save(ctx context.Context, wf *domain.Workflow) error

	// Load retrieves a workflow by ID.
	// Returns domain.ErrWorkflowNotFound if the workflow does not exist.
	Load(ctx context.Context, id string) (*domain.Workflow, error)

	// Delete removes a workflow. Deleting a missing workflow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored workflows.
	List(ctx context.Context) ([]string, error)
}
