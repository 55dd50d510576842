package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (c *capturePublisher) Publish(ctx context.Context, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func (c *capturePublisher) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestSendEmailNotificationPublishes(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewService(pub, ServiceConfig{Now: fixedClock()})
	defer svc.Close()

	err := svc.SendEmailNotification(context.Background(), TypePendingApproval, "user-b", "New Transaction for Review", "body")
	if err != nil {
		t.Fatalf("SendEmailNotification returned error: %v", err)
	}

	events := pub.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	assert.Equal(t, TypePendingApproval, events[0].Type)
	assert.Equal(t, "user-b", events[0].RecipientID)
	assert.Equal(t, "New Transaction for Review", events[0].Subject)
}

func TestSendEmailNotificationRequiresRecipient(t *testing.T) {
	svc := NewService(&capturePublisher{}, ServiceConfig{})
	defer svc.Close()
	if err := svc.SendEmailNotification(context.Background(), TypeApproved, "", "s", "b"); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

func TestScheduleReminderArmsTimer(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewService(pub, ServiceConfig{Now: fixedClock()})
	defer svc.Close()

	handle, err := svc.ScheduleReminder(context.Background(), "txn-1", "user-a", 24)
	if err != nil {
		t.Fatalf("ScheduleReminder returned error: %v", err)
	}
	assert.Equal(t, "user-a", handle.ApproverID)
	assert.False(t, handle.IsEscalation)
	assert.Equal(t, fixedClock()().Add(24*time.Hour), handle.FiresAt)

	svc.mu.Lock()
	_, armed := svc.timers[handle.ID]
	svc.mu.Unlock()
	assert.True(t, armed)

	// Nothing published until the timer fires.
	assert.Empty(t, pub.all())
}

func TestScheduleEscalationHandle(t *testing.T) {
	svc := NewService(&capturePublisher{}, ServiceConfig{Now: fixedClock()})
	defer svc.Close()

	handle, err := svc.ScheduleEscalation(context.Background(), "txn-1", "user-a", "user-c", 4)
	if err != nil {
		t.Fatalf("ScheduleEscalation returned error: %v", err)
	}
	assert.True(t, handle.IsEscalation)
	assert.Equal(t, "user-c", handle.ApproverID)
}

func TestCancelDisarmsTimer(t *testing.T) {
	svc := NewService(&capturePublisher{}, ServiceConfig{})
	defer svc.Close()

	handle, err := svc.ScheduleReminder(context.Background(), "txn-1", "user-a", 1)
	if err != nil {
		t.Fatalf("ScheduleReminder returned error: %v", err)
	}
	svc.Cancel(handle.ID)

	svc.mu.Lock()
	_, armed := svc.timers[handle.ID]
	svc.mu.Unlock()
	assert.False(t, armed)

	// Cancelling again is a no-op.
	svc.Cancel(handle.ID)
}

func TestCloseDisarmsAllTimers(t *testing.T) {
	svc := NewService(&capturePublisher{}, ServiceConfig{})

	for i := 0; i < 3; i++ {
		if _, err := svc.ScheduleReminder(context.Background(), "txn-1", "user-a", 1); err != nil {
			t.Fatalf("ScheduleReminder returned error: %v", err)
		}
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.timers)
}
