// Package notification bridges domain events to outbound notifications.
package notification

import (
	"context"

	"legalintake_backend/internal/email"
	"legalintake_backend/internal/events"
	"legalintake_backend/platform/logger"
)

// Notifier subscribes to domain events and sends the corresponding emails.
// Reconciliation events are deliberately not subscribed: webhook ingestion
// must never trigger outbound side effects, or provider retries would
// duplicate them.
type Notifier struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates a notifier and registers its subscriptions on the bus.
func New(bus events.Bus, sender email.Sender, log *logger.Logger) *Notifier {
	n := &Notifier{sender: sender, log: log}
	bus.Subscribe(events.EventAttorneyAssigned, events.HandlerFunc(n.handleAttorneyAssigned))
	return n
}

func (n *Notifier) handleAttorneyAssigned(ctx context.Context, event events.Event) error {
	assigned, ok := event.(events.AttorneyAssigned)
	if !ok {
		return nil
	}

	err := n.sender.SendAssignmentEmail(ctx, assigned.AttorneyEmail, email.AssignmentData{
		AttorneyName: assigned.AttorneyName,
		LeadID:       assigned.LeadID,
		LeadName:     assigned.LeadName,
		LeadPhone:    assigned.LeadPhone,
		CaseType:     assigned.CaseType,
	})
	if err != nil {
		n.log.Error("assignment email failed",
			"lead_id", assigned.LeadID,
			"attorney_id", assigned.AttorneyID,
			"error", err,
		)
		return err
	}

	n.log.Info("assignment email sent",
		"lead_id", assigned.LeadID,
		"attorney_id", assigned.AttorneyID,
	)
	return nil
}
