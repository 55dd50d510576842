package store

import (
	"context"
	"errors"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store is the persistence abstraction for workflows. Snapshots are written
// whole, keyed by transaction id; the engine owns all mutation and replaces
// the stored snapshot on each committed transition.
type Store interface {
	CreateWorkflow(ctx context.Context, wf *models.Workflow) error
	GetWorkflow(ctx context.Context, transactionID string) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, wf *models.Workflow) error
	ListWorkflows(ctx context.Context, filter ListFilter) ([]*models.Workflow, error)
	Ping(ctx context.Context) error
}

// ListFilter narrows ListWorkflows results. ApproverID matches the approver
// at the current pointer, i.e. the user's pending inbox.
type ListFilter struct {
	Status     models.WorkflowStatus
	ApproverID string
	Limit      int
	Offset     int
}
