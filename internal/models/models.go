package models

import (
	"time"

	"github.com/google/uuid"
)

// Importance controls both the default approval route and deadline tightness.
// Immutable once a workflow is created.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
	ImportanceUrgent Importance = "urgent"
)

// Valid reports whether v is one of the four importance levels.
func (v Importance) Valid() bool {
	switch v {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceUrgent:
		return true
	}
	return false
}

// WorkflowStatus is the aggregate state of a workflow. Completed and Rejected
// are absorbing; Escalated is transient (the chain continues via the pointer).
type WorkflowStatus string

const (
	StatusInitiated  WorkflowStatus = "initiated"
	StatusInProgress WorkflowStatus = "in_progress"
	StatusCompleted  WorkflowStatus = "completed"
	StatusRejected   WorkflowStatus = "rejected"
	StatusEscalated  WorkflowStatus = "escalated"
)

// Terminal reports whether no further action is accepted.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// StepStatus is the per-approver resolution of one chain entry.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// Approver roles as configured on chain entries. Escalation targets
// RoleDirector and RoleViceManager only.
const (
	RoleManager     = "manager"
	RoleViceManager = "vice_manager"
	RoleDirector    = "director"
)

// RequiredAction distinguishes entries that must sign off from entries that
// only review.
type RequiredAction string

const (
	RequireApprove RequiredAction = "approve"
	RequireReview  RequiredAction = "review"
)

// ApprovalStep is one entry in a workflow's approval chain. Steps are created
// at initialization and never deleted; only the entry at the current pointer
// may change state.
type ApprovalStep struct {
	ApproverID     string         `json:"approverId"`
	Role           string         `json:"role"`
	RequiredAction RequiredAction `json:"requiredAction"`
	Order          int            `json:"order"`
	Status         StepStatus     `json:"status"`
	Deadline       time.Time      `json:"deadline"`
	Signature      []byte         `json:"signature,omitempty"`
	SignatureHash  string         `json:"signatureHash,omitempty"`
	ActionDate     *time.Time     `json:"actionDate,omitempty"`
	Comment        string         `json:"comment,omitempty"`
}

// HistoryEntry is an immutable audit record of one processed action.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Step      int       `json:"step"`
}

// ReminderHandle identifies a scheduled reminder or escalation timer so it can
// be cancelled when the workflow moves past the step it was armed for.
type ReminderHandle struct {
	ID           uuid.UUID `json:"id"`
	ApproverID   string    `json:"approverId"`
	FiresAt      time.Time `json:"firesAt"`
	IsEscalation bool      `json:"isEscalation"`
}

// Workflow is the aggregate root: one per transaction, created once by
// InitializeWorkflow and mutated only through ProcessAction.
type Workflow struct {
	TransactionID        string           `json:"transactionId"`
	CreatedBy            string           `json:"createdBy"`
	Importance           Importance       `json:"importance"`
	ApprovalChain        []ApprovalStep   `json:"approvalChain"`
	CurrentApproverIndex int              `json:"currentApproverIndex"`
	History              []HistoryEntry   `json:"history"`
	Status               WorkflowStatus   `json:"status"`
	Reminders            []ReminderHandle `json:"reminders,omitempty"`
	LastUpdated          time.Time        `json:"lastUpdated"`
}

// CurrentApprover returns the chain entry at the pointer, or nil when the
// pointer is out of range (only possible on a zero-value workflow).
func (w *Workflow) CurrentApprover() *ApprovalStep {
	if w.CurrentApproverIndex < 0 || w.CurrentApproverIndex >= len(w.ApprovalChain) {
		return nil
	}
	return &w.ApprovalChain[w.CurrentApproverIndex]
}

// Clone deep-copies the workflow so stored state can never be mutated through
// a returned snapshot.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	out := *w
	out.ApprovalChain = make([]ApprovalStep, len(w.ApprovalChain))
	copy(out.ApprovalChain, w.ApprovalChain)
	for i := range out.ApprovalChain {
		if sig := w.ApprovalChain[i].Signature; sig != nil {
			out.ApprovalChain[i].Signature = append([]byte(nil), sig...)
		}
		if ad := w.ApprovalChain[i].ActionDate; ad != nil {
			t := *ad
			out.ApprovalChain[i].ActionDate = &t
		}
	}
	out.History = make([]HistoryEntry, len(w.History))
	copy(out.History, w.History)
	out.Reminders = make([]ReminderHandle, len(w.Reminders))
	copy(out.Reminders, w.Reminders)
	return &out
}

// Transaction is the inbound document descriptor a workflow is initialized
// from. ApprovalChain entries arrive ordered; Order and Deadline are assigned
// by the engine.
type Transaction struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	CreatedBy     string          `json:"createdBy"`
	Importance    Importance      `json:"importance"`
	ApprovalChain []ChainAssignee `json:"approvalChain"`
}

// ChainAssignee is one configured approver on an inbound transaction.
type ChainAssignee struct {
	ApproverID     string         `json:"approverId"`
	Role           string         `json:"role"`
	RequiredAction RequiredAction `json:"requiredAction"`
}
