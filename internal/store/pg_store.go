package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

// PGStore persists workflow snapshots into Postgres. Chain, history and
// reminder handles are stored as JSONB columns; current_approver_id is
// denormalized from the chain so pending-inbox queries stay in SQL.
//
// Schema:
//
//	CREATE TABLE workflows (
//	    transaction_id         TEXT PRIMARY KEY,
//	    created_by             TEXT NOT NULL,
//	    importance             TEXT NOT NULL,
//	    status                 TEXT NOT NULL,
//	    current_approver_index INT NOT NULL,
//	    current_approver_id    TEXT NOT NULL DEFAULT '',
//	    approval_chain         JSONB NOT NULL,
//	    history                JSONB NOT NULL,
//	    reminders              JSONB NOT NULL,
//	    last_updated           TIMESTAMPTZ NOT NULL
//	);
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (p *PGStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func currentApproverID(wf *models.Workflow) string {
	if cur := wf.CurrentApprover(); cur != nil {
		return cur.ApproverID
	}
	return ""
}

func marshalColumns(wf *models.Workflow) (chain, history, reminders []byte, err error) {
	if chain, err = json.Marshal(wf.ApprovalChain); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal approval chain: %w", err)
	}
	if wf.History == nil {
		history = []byte("[]")
	} else if history, err = json.Marshal(wf.History); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal history: %w", err)
	}
	if wf.Reminders == nil {
		reminders = []byte("[]")
	} else if reminders, err = json.Marshal(wf.Reminders); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal reminders: %w", err)
	}
	return chain, history, reminders, nil
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		wf        models.Workflow
		chain     []byte
		history   []byte
		reminders []byte
		curID     string
	)
	if err := row.Scan(
		&wf.TransactionID,
		&wf.CreatedBy,
		&wf.Importance,
		&wf.Status,
		&wf.CurrentApproverIndex,
		&curID,
		&chain,
		&history,
		&reminders,
		&wf.LastUpdated,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(chain, &wf.ApprovalChain); err != nil {
		return nil, fmt.Errorf("unmarshal approval chain: %w", err)
	}
	if err := json.Unmarshal(history, &wf.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if err := json.Unmarshal(reminders, &wf.Reminders); err != nil {
		return nil, fmt.Errorf("unmarshal reminders: %w", err)
	}
	return &wf, nil
}

const workflowColumns = `transaction_id, created_by, importance, status, current_approver_index, current_approver_id, approval_chain, history, reminders, last_updated`

func (p *PGStore) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	chain, history, reminders, err := marshalColumns(wf)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	res, err := p.db.ExecContext(ctx, q,
		wf.TransactionID, wf.CreatedBy, string(wf.Importance), string(wf.Status),
		wf.CurrentApproverIndex, currentApproverID(wf), chain, history, reminders, wf.LastUpdated,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (p *PGStore) GetWorkflow(ctx context.Context, transactionID string) (*models.Workflow, error) {
	q := `SELECT ` + workflowColumns + ` FROM workflows WHERE transaction_id = $1`
	wf, err := scanWorkflow(p.db.QueryRowContext(ctx, q, transactionID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func (p *PGStore) UpdateWorkflow(ctx context.Context, wf *models.Workflow) error {
	chain, history, reminders, err := marshalColumns(wf)
	if err != nil {
		return err
	}
	q := `
		UPDATE workflows
		SET status = $2,
		    current_approver_index = $3,
		    current_approver_id = $4,
		    approval_chain = $5,
		    history = $6,
		    reminders = $7,
		    last_updated = $8
		WHERE transaction_id = $1
	`
	res, err := p.db.ExecContext(ctx, q,
		wf.TransactionID, string(wf.Status), wf.CurrentApproverIndex, currentApproverID(wf),
		chain, history, reminders, wf.LastUpdated,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGStore) ListWorkflows(ctx context.Context, filter ListFilter) ([]*models.Workflow, error) {
	q := `SELECT ` + workflowColumns + ` FROM workflows WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if filter.Status != "" {
		q += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(filter.Status))
		idx++
	}
	if filter.ApproverID != "" {
		q += fmt.Sprintf(" AND current_approver_id = $%d", idx)
		args = append(args, filter.ApproverID)
		idx++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	q += fmt.Sprintf(" ORDER BY last_updated DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, rows.Err()
}
