package notification

import (
	"context"
	"testing"

	"legalintake_backend/internal/email"
	"legalintake_backend/internal/events"
	"legalintake_backend/platform/logger"
)

type fakeSender struct {
	to   []string
	data []email.AssignmentData
}

func (f *fakeSender) SendAssignmentEmail(_ context.Context, toEmail string, data email.AssignmentData) error {
	f.to = append(f.to, toEmail)
	f.data = append(f.data, data)
	return nil
}

func TestAssignmentEventSendsEmail(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &fakeSender{}
	New(bus, sender, log)

	event := events.NewAttorneyAssigned(12, "Maria Gonzalez", "+15551234567", "Personal Injury", 3, "Jane Counsel", "jane@firm.example")
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(sender.to) != 1 || sender.to[0] != "jane@firm.example" {
		t.Fatalf("expected one email to the attorney, got %v", sender.to)
	}
	if sender.data[0].LeadID != 12 || sender.data[0].CaseType != "Personal Injury" {
		t.Fatalf("unexpected email data: %+v", sender.data[0])
	}
}

func TestOtherEventsIgnored(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &fakeSender{}
	New(bus, sender, log)

	if err := bus.PublishSync(context.Background(), events.NewLeadReconciled(1, "call-1", true)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(sender.to) != 0 {
		t.Fatalf("reconciliation events must not send email, got %v", sender.to)
	}
}
