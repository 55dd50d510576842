package store

import (
	"context"
	"sort"
	"sync"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

// MemoryStore keeps workflow snapshots in a map. It clones on both write and
// read so no caller can mutate stored state through a returned snapshot.
type MemoryStore struct {
	mu        sync.RWMutex
	workflows map[string]*models.Workflow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{workflows: map[string]*models.Workflow{}}
}

func (m *MemoryStore) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[wf.TransactionID]; ok {
		return ErrAlreadyExists
	}
	m.workflows[wf.TransactionID] = wf.Clone()
	return nil
}

func (m *MemoryStore) GetWorkflow(ctx context.Context, transactionID string) (*models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wf, ok := m.workflows[transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	return wf.Clone(), nil
}

func (m *MemoryStore) UpdateWorkflow(ctx context.Context, wf *models.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[wf.TransactionID]; !ok {
		return ErrNotFound
	}
	m.workflows[wf.TransactionID] = wf.Clone()
	return nil
}

func (m *MemoryStore) ListWorkflows(ctx context.Context, filter ListFilter) ([]*models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Workflow
	for _, wf := range m.workflows {
		if filter.Status != "" && wf.Status != filter.Status {
			continue
		}
		if filter.ApproverID != "" {
			cur := wf.CurrentApprover()
			if cur == nil || cur.ApproverID != filter.ApproverID {
				continue
			}
		}
		out = append(out, wf.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > len(out) {
		start = len(out)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
