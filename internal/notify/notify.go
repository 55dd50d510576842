package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

// EventType classifies outbound notifications.
type EventType string

const (
	TypePendingApproval EventType = "pending_approval"
	TypeApproved        EventType = "approved"
	TypeRejected        EventType = "rejected"
	TypeEscalated       EventType = "escalated"
	TypeReminder        EventType = "reminder"
)

// Event is the envelope published for every outbound notification. Delivery
// (email, SMS, websockets) is owned by downstream consumers of the topic.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          EventType `json:"type"`
	TransactionID string    `json:"transactionId,omitempty"`
	RecipientID   string    `json:"recipientId"`
	Subject       string    `json:"subject,omitempty"`
	Body          string    `json:"body,omitempty"`
	ScheduledFor  time.Time `json:"scheduledFor,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Publisher hands notification events to the delivery pipeline.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Notifier is the collaborator contract the workflow engine calls. All calls
// are fire-and-forget from the engine's perspective: failures are logged by
// the implementation and never surface as workflow-transition failures.
type Notifier interface {
	SendEmailNotification(ctx context.Context, kind EventType, recipientID, subject, body string) error
	ScheduleReminder(ctx context.Context, transactionID, approverID string, delayHours int) (models.ReminderHandle, error)
	ScheduleEscalation(ctx context.Context, transactionID, currentApproverID, nextApproverID string, delayHours int) (models.ReminderHandle, error)
	Cancel(handleID uuid.UUID)
}

// LogPublisher writes events to the process log. Used when no Kafka brokers
// are configured (local development, tests).
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, ev Event) error {
	log.Printf("[notify] %s -> %s txn=%s subject=%q", ev.Type, ev.RecipientID, ev.TransactionID, ev.Subject)
	return nil
}

func (LogPublisher) Close() error { return nil }
