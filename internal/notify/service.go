package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

// Service implements Notifier over a Publisher. Immediate notifications are
// published right away; reminders and escalations are armed on in-process
// timers and published when they fire. Timers are cancellable through the
// handle id recorded on the workflow.
type Service struct {
	pub Publisher
	now func() time.Time

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

// ServiceConfig tunes the notification service. Now overrides the clock in
// tests; zero values take defaults.
type ServiceConfig struct {
	Now func() time.Time
}

func NewService(pub Publisher, cfg ServiceConfig) *Service {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		pub:    pub,
		now:    cfg.Now,
		timers: map[uuid.UUID]*time.Timer{},
	}
}

func (s *Service) SendEmailNotification(ctx context.Context, kind EventType, recipientID, subject, body string) error {
	if recipientID == "" {
		return fmt.Errorf("recipient required")
	}
	ev := Event{
		ID:          uuid.New(),
		Type:        kind,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		CreatedAt:   s.now(),
	}
	return s.pub.Publish(ctx, ev)
}

func (s *Service) ScheduleReminder(ctx context.Context, transactionID, approverID string, delayHours int) (models.ReminderHandle, error) {
	handle := models.ReminderHandle{
		ID:         uuid.New(),
		ApproverID: approverID,
		FiresAt:    s.now().Add(time.Duration(delayHours) * time.Hour),
	}
	ev := Event{
		ID:            handle.ID,
		Type:          TypeReminder,
		TransactionID: transactionID,
		RecipientID:   approverID,
		Subject:       "Pending Transaction Reminder",
		Body:          fmt.Sprintf("Transaction %s is still waiting for your review.", transactionID),
		ScheduledFor:  handle.FiresAt,
		CreatedAt:     s.now(),
	}
	s.arm(handle.ID, time.Duration(delayHours)*time.Hour, ev)
	return handle, nil
}

func (s *Service) ScheduleEscalation(ctx context.Context, transactionID, currentApproverID, nextApproverID string, delayHours int) (models.ReminderHandle, error) {
	handle := models.ReminderHandle{
		ID:           uuid.New(),
		ApproverID:   nextApproverID,
		FiresAt:      s.now().Add(time.Duration(delayHours) * time.Hour),
		IsEscalation: true,
	}
	ev := Event{
		ID:            handle.ID,
		Type:          TypeEscalated,
		TransactionID: transactionID,
		RecipientID:   nextApproverID,
		Subject:       "Escalated Transaction",
		Body: fmt.Sprintf("Transaction %s was not handled by %s in time and requires your attention.",
			transactionID, currentApproverID),
		ScheduledFor: handle.FiresAt,
		CreatedAt:    s.now(),
	}
	s.arm(handle.ID, time.Duration(delayHours)*time.Hour, ev)
	return handle, nil
}

// Cancel disarms a scheduled timer. Cancelling an unknown or already-fired
// handle is a no-op.
func (s *Service) Cancel(handleID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[handleID]; ok {
		t.Stop()
		delete(s.timers, handleID)
	}
}

// Close disarms all pending timers and closes the publisher.
func (s *Service) Close() error {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	return s.pub.Close()
}

func (s *Service) arm(id uuid.UUID, delay time.Duration, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.pub.Publish(ctx, ev); err != nil {
			log.Printf("[scheduler] publish %s for txn %s: %v", ev.Type, ev.TransactionID, err)
		}
	})
}
