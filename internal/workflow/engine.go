package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/BaraaHazzaa/DocuMint/internal/archive"
	"github.com/BaraaHazzaa/DocuMint/internal/models"
	"github.com/BaraaHazzaa/DocuMint/internal/notify"
	"github.com/BaraaHazzaa/DocuMint/internal/store"
)

// Reminder thresholds in hours. A timer is armed only when more time than its
// delay remains before the current step's deadline.
const (
	firstReminderHours  = 24
	secondReminderHours = 48
)

// Engine is the workflow state machine. It owns all workflow mutation:
// transitions are validated, applied to a local copy, persisted whole, and
// only then trigger notification side effects. Transitions for one
// transaction are serialized; different transactions proceed in parallel.
type Engine struct {
	store    store.Store
	notifier notify.Notifier
	archiver archive.Archiver
	now      func() time.Time
	locks    *keyLocks
}

// Config tunes the engine. Now overrides the clock in tests.
type Config struct {
	Now func() time.Time
}

// New constructs an Engine. archiver may be nil when snapshot archiving is
// not configured.
func New(st store.Store, notifier notify.Notifier, archiver archive.Archiver, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		store:    st,
		notifier: notifier,
		archiver: archiver,
		now:      cfg.Now,
		locks:    newKeyLocks(),
	}
}

// InitializeWorkflow creates the workflow for a transaction: one step per
// chain entry with order, pending status and a deadline per importance, the
// pointer at the first approver, and reminders armed for them. A transaction
// gets exactly one workflow; re-initialization fails.
func (e *Engine) InitializeWorkflow(ctx context.Context, tx models.Transaction) (*models.Workflow, error) {
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	now := e.now()
	chain := make([]models.ApprovalStep, len(tx.ApprovalChain))
	for i, entry := range tx.ApprovalChain {
		chain[i] = models.ApprovalStep{
			ApproverID:     entry.ApproverID,
			Role:           entry.Role,
			RequiredAction: entry.RequiredAction,
			Order:          i,
			Status:         models.StepPending,
			Deadline:       CalculateDeadline(now, tx.Importance, i),
		}
	}

	wf := &models.Workflow{
		TransactionID:        tx.ID,
		CreatedBy:            tx.CreatedBy,
		Importance:           tx.Importance,
		ApprovalChain:        chain,
		CurrentApproverIndex: 0,
		History:              []models.HistoryEntry{},
		Status:               models.StatusInitiated,
		LastUpdated:          now,
	}
	wf.Reminders = e.scheduleReminders(ctx, wf)

	if err := e.store.CreateWorkflow(ctx, wf); err != nil {
		e.cancelReminders(wf.Reminders)
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyInitialized, tx.ID)
		}
		return nil, err
	}
	return wf, nil
}

func validateTransaction(tx models.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("%w: transaction id required", ErrValidation)
	}
	if len(tx.Title) < 3 {
		return fmt.Errorf("%w: title must be at least 3 characters", ErrValidation)
	}
	if len(tx.Description) < 10 {
		return fmt.Errorf("%w: description must be at least 10 characters", ErrValidation)
	}
	if !tx.Importance.Valid() {
		return fmt.Errorf("%w: unknown importance %q", ErrValidation, tx.Importance)
	}
	if len(tx.ApprovalChain) == 0 {
		return fmt.Errorf("%w: approval chain must not be empty", ErrValidation)
	}
	for i, entry := range tx.ApprovalChain {
		if entry.ApproverID == "" {
			return fmt.Errorf("%w: approval chain entry %d has no approver", ErrValidation, i)
		}
	}
	return nil
}

// ActionRequest is one submitted action against a workflow.
type ActionRequest struct {
	TransactionID string
	Action        Action
	UserID        string
	Comment       string
	Signature     []byte
}

// ProcessAction applies one action to a workflow. The transition either
// commits whole or leaves stored state untouched; notification dispatch and
// archiving happen after commit and never fail the transition.
func (e *Engine) ProcessAction(ctx context.Context, req ActionRequest) (*models.Workflow, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("%w: transaction id required", ErrValidation)
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}

	unlock := e.locks.acquire(req.TransactionID)
	defer unlock()

	wf, err := e.store.GetWorkflow(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, req.TransactionID)
		}
		return nil, err
	}
	if wf.Status.Terminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrWorkflowClosed, wf.Status)
	}

	current := wf.CurrentApprover()
	if current == nil || current.ApproverID != req.UserID {
		return nil, ErrUnauthorized
	}

	now := e.now()
	actedIndex := wf.CurrentApproverIndex

	switch req.Action {
	case ActionApprove:
		if len(req.Signature) == 0 {
			return nil, fmt.Errorf("%w: signature required for approval", ErrValidation)
		}
		current.Status = models.StepApproved
		current.Signature = append([]byte(nil), req.Signature...)
		current.SignatureHash = HashSignature(req.Signature)
		current.ActionDate = &now
		current.Comment = req.Comment
		if actedIndex < len(wf.ApprovalChain)-1 {
			wf.CurrentApproverIndex++
			wf.Status = models.StatusInProgress
		} else {
			wf.Status = models.StatusCompleted
		}

	case ActionReject:
		current.Status = models.StepRejected
		current.ActionDate = &now
		current.Comment = req.Comment
		wf.Status = models.StatusRejected

	case ActionEscalate:
		next := -1
		for i := actedIndex + 1; i < len(wf.ApprovalChain); i++ {
			role := wf.ApprovalChain[i].Role
			if role == models.RoleDirector || role == models.RoleViceManager {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, ErrNoHigherApprover
		}
		// Re-routing, not a bulk reject: skipped steps stay pending.
		wf.CurrentApproverIndex = next
		wf.Status = models.StatusEscalated

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, req.Action)
	}

	wf.History = append(wf.History, models.HistoryEntry{
		ID:        uuid.New(),
		Action:    req.Action.String(),
		UserID:    req.UserID,
		Comment:   req.Comment,
		Timestamp: now,
		Step:      actedIndex,
	})
	wf.LastUpdated = now

	// Reminders follow the pointer: superseded handles are disarmed once the
	// transition commits, fresh ones armed only when the chain keeps moving.
	oldHandles := wf.Reminders
	var newHandles []models.ReminderHandle
	switch {
	case wf.Status == models.StatusInProgress:
		newHandles = e.scheduleReminders(ctx, wf)
		wf.Reminders = newHandles
	case wf.Status.Terminal():
		wf.Reminders = nil
	}

	if err := e.store.UpdateWorkflow(ctx, wf); err != nil {
		e.cancelReminders(newHandles)
		return nil, err
	}
	if wf.Status == models.StatusInProgress || wf.Status.Terminal() {
		e.cancelReminders(oldHandles)
	}

	snapshot := wf.Clone()
	go e.dispatchNotifications(req.Action, snapshot)
	if wf.Status.Terminal() && e.archiver != nil {
		go e.archiveTerminal(snapshot)
	}
	return wf, nil
}

// GetWorkflowStatus returns the stored snapshot for a transaction.
func (e *Engine) GetWorkflowStatus(ctx context.Context, transactionID string) (*models.Workflow, error) {
	wf, err := e.store.GetWorkflow(ctx, transactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, transactionID)
		}
		return nil, err
	}
	return wf, nil
}

// CanTakeAction reports whether userID is the current approver of a live
// workflow for the transaction.
func (e *Engine) CanTakeAction(ctx context.Context, userID, transactionID string) bool {
	wf, err := e.store.GetWorkflow(ctx, transactionID)
	if err != nil {
		return false
	}
	if wf.Status.Terminal() {
		return false
	}
	current := wf.CurrentApprover()
	return current != nil && current.ApproverID == userID
}

// PendingForApprover lists live workflows waiting on the given approver.
func (e *Engine) PendingForApprover(ctx context.Context, approverID string, limit, offset int) ([]*models.Workflow, error) {
	workflows, err := e.store.ListWorkflows(ctx, store.ListFilter{
		ApproverID: approverID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	live := workflows[:0]
	for _, wf := range workflows {
		if !wf.Status.Terminal() {
			live = append(live, wf)
		}
	}
	return live, nil
}

// HashSignature returns the hex SHA-256 digest stored next to a step's
// signature blob for later verification.
func HashSignature(signature []byte) string {
	sum := sha256.Sum256(signature)
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares a presented digest against the digest recorded on
// the step with the given order.
func (e *Engine) VerifySignature(ctx context.Context, transactionID string, stepOrder int, signatureHash string) (bool, error) {
	wf, err := e.GetWorkflowStatus(ctx, transactionID)
	if err != nil {
		return false, err
	}
	for _, step := range wf.ApprovalChain {
		if step.Order == stepOrder {
			return step.SignatureHash != "" && step.SignatureHash == signatureHash, nil
		}
	}
	return false, fmt.Errorf("%w: no step with order %d", ErrValidation, stepOrder)
}

// scheduleReminders arms reminder and escalation timers for the approver at
// the current pointer. A timer is armed only when its delay fits before the
// step deadline; the escalation delay comes from the importance route rule
// and targets the approver after the current one.
func (e *Engine) scheduleReminders(ctx context.Context, wf *models.Workflow) []models.ReminderHandle {
	if e.notifier == nil {
		return nil
	}
	current := wf.CurrentApprover()
	if current == nil {
		return nil
	}

	untilDeadline := current.Deadline.Sub(e.now())
	var handles []models.ReminderHandle

	for _, delay := range []int{firstReminderHours, secondReminderHours} {
		if untilDeadline <= time.Duration(delay)*time.Hour {
			continue
		}
		h, err := e.notifier.ScheduleReminder(ctx, wf.TransactionID, current.ApproverID, delay)
		if err != nil {
			log.Printf("[workflow] schedule reminder for txn %s: %v", wf.TransactionID, err)
			continue
		}
		handles = append(handles, h)
	}

	if rule, err := RouteForImportance(wf.Importance); err == nil {
		escalationDelay := time.Duration(rule.EscalationHours) * time.Hour
		if untilDeadline > escalationDelay && wf.CurrentApproverIndex+1 < len(wf.ApprovalChain) {
			next := wf.ApprovalChain[wf.CurrentApproverIndex+1]
			h, err := e.notifier.ScheduleEscalation(ctx, wf.TransactionID, current.ApproverID, next.ApproverID, rule.EscalationHours)
			if err != nil {
				log.Printf("[workflow] schedule escalation for txn %s: %v", wf.TransactionID, err)
			} else {
				handles = append(handles, h)
			}
		}
	}
	return handles
}

func (e *Engine) cancelReminders(handles []models.ReminderHandle) {
	if e.notifier == nil {
		return
	}
	for _, h := range handles {
		e.notifier.Cancel(h.ID)
	}
}

// dispatchNotifications emits the post-commit notifications for an action.
// Best-effort: failures are logged, never propagated.
func (e *Engine) dispatchNotifications(action Action, wf *models.Workflow) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch action {
	case ActionApprove:
		if wf.Status == models.StatusCompleted {
			return
		}
		next := wf.CurrentApprover()
		if next == nil {
			return
		}
		err = e.notifier.SendEmailNotification(ctx, notify.TypePendingApproval,
			next.ApproverID,
			"New Transaction for Review",
			fmt.Sprintf("You have a new transaction (%s) waiting for your review.", wf.TransactionID))

	case ActionReject:
		var reason string
		for _, step := range wf.ApprovalChain {
			if step.Status == models.StepRejected {
				reason = step.Comment
			}
		}
		err = e.notifier.SendEmailNotification(ctx, notify.TypeRejected,
			wf.CreatedBy,
			"Transaction Rejected",
			fmt.Sprintf("Your transaction (%s) has been rejected. Reason: %s", wf.TransactionID, reason))

	case ActionEscalate:
		next := wf.CurrentApprover()
		if next == nil {
			return
		}
		err = e.notifier.SendEmailNotification(ctx, notify.TypeEscalated,
			next.ApproverID,
			"Escalated Transaction",
			fmt.Sprintf("An escalated transaction (%s) requires your immediate attention.", wf.TransactionID))
	}
	if err != nil {
		log.Printf("[workflow] notify %s for txn %s: %v", action, wf.TransactionID, err)
	}
}

func (e *Engine) archiveTerminal(wf *models.Workflow) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.archiver.ArchiveWorkflow(ctx, wf); err != nil {
		log.Printf("[workflow] archive txn %s: %v", wf.TransactionID, err)
	}
}
