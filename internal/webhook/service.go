package webhook

import (
	"context"
	"strings"

	callrepo "legalintake_backend/internal/calllogs/repository"
	leadrepo "legalintake_backend/internal/leads/repository"
	"legalintake_backend/platform/logger"
)

// LeadReconciler upserts a lead for one webhook delivery.
type LeadReconciler interface {
	UpsertByCallID(ctx context.Context, callID string, patch leadrepo.Patch) (*leadrepo.Lead, error)
}

// CallLogReconciler upserts a call log for one webhook delivery.
type CallLogReconciler interface {
	UpsertByCallID(ctx context.Context, callID string, patch callrepo.Patch) (*callrepo.CallLog, error)
}

// Service runs the reconciliation pipeline for a single webhook delivery:
// resolve identity, classify the event, extract fields, then upsert the lead
// and its call log.
type Service struct {
	classifier *Classifier
	leads      LeadReconciler
	callLogs   CallLogReconciler
	log        *logger.Logger
}

// NewService creates the webhook pipeline service.
func NewService(classifier *Classifier, leads LeadReconciler, callLogs CallLogReconciler, log *logger.Logger) *Service {
	return &Service{
		classifier: classifier,
		leads:      leads,
		callLogs:   callLogs,
		log:        log,
	}
}

// Canonical lead statuses assigned on analyzed events.
var leadStatusValues = map[string]string{
	"new":           "New",
	"qualified":     "Qualified",
	"converted":     "Converted",
	"disqualified":  "Disqualified",
	"unqualified":   "Disqualified",
	"not qualified": "Disqualified",
}

// Process reconciles one delivery. A nil return means the delivery was either
// applied or deliberately dropped; an error means the store failed and the
// handler should acknowledge with success=false.
func (s *Service) Process(ctx context.Context, payload Payload) error {
	eventType := EventType(payload)

	identity, ok := ResolveIdentity(payload)
	if !ok {
		s.log.WebhookDropped("no resolvable call id", eventType)
		return nil
	}

	class := s.classifier.Classify(eventType)
	if class == ClassUnknown && !s.classifier.HasCallData(payload) {
		s.log.WebhookDropped("unknown event without call data", eventType)
		return nil
	}

	fields := ExtractFields(payload)

	lead, err := s.leads.UpsertByCallID(ctx, identity.CallID, s.leadPatch(identity, class, fields))
	if err != nil {
		return err
	}

	if _, err := s.callLogs.UpsertByCallID(ctx, identity.CallID, s.callLogPatch(identity, class, fields, lead.ID)); err != nil {
		return err
	}

	s.log.WebhookEvent(identity.CallID, eventType, class.String())
	return nil
}

func (s *Service) leadPatch(identity Identity, class EventClass, fields Fields) leadrepo.Patch {
	patch := leadrepo.Patch{
		Name:       fields.LeadName,
		CaseType:   fields.CaseType,
		Urgency:    fields.Urgency,
		Summary:    fields.Summary,
		Transcript: fields.Transcript,
	}

	// The Unknown sentinel never overwrites a previously captured number.
	if identity.Phone != PhoneUnknown {
		phone := identity.Phone
		patch.Phone = &phone
	}

	// Status is semantic and only trustworthy once analysis has run;
	// intermediate and unknown events must never downgrade it.
	if class == ClassAnalyzed {
		status := resolveLeadStatus(fields)
		patch.Status = &status
	}

	return patch
}

func (s *Service) callLogPatch(identity Identity, class EventClass, fields Fields, leadID int64) callrepo.Patch {
	patch := callrepo.Patch{
		LeadID:           &leadID,
		Status:           fields.CallStatus,
		Direction:        fields.Direction,
		Duration:         fields.DurationSeconds,
		RecordingURL:     fields.RecordingURL,
		Summary:          fields.Summary,
		Transcript:       fields.Transcript,
		Sentiment:        fields.Sentiment,
		DisconnectReason: fields.DisconnectReason,
		Analysis:         fields.Analysis,
		CaseType:         fields.CaseType,
	}

	if identity.AgentID != "" {
		agentID := identity.AgentID
		patch.AgentID = &agentID
	}
	if identity.Phone != PhoneUnknown {
		phone := identity.Phone
		patch.PhoneNumber = &phone
	}

	// A final event without an explicit status still marks the call ended.
	if class == ClassFinal && patch.Status == nil {
		completed := "completed"
		patch.Status = &completed
	}

	return patch
}

func resolveLeadStatus(fields Fields) string {
	if fields.LeadStatus != nil {
		if mapped, ok := leadStatusValues[strings.ToLower(strings.TrimSpace(*fields.LeadStatus))]; ok {
			return mapped
		}
	}
	if fields.CallSuccessful != nil && *fields.CallSuccessful {
		return "Qualified"
	}
	return "New"
}
