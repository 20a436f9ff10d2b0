// Package service implements lead business logic, including the webhook-side
// lead reconciler that collapses retried and re-identified deliveries into a
// single lead per real-world call.
package service

import (
	"context"
	"time"

	"legalintake_backend/internal/events"
	"legalintake_backend/internal/leads/repository"
	"legalintake_backend/platform/apperr"
	"legalintake_backend/platform/config"
	"legalintake_backend/platform/logger"
	"legalintake_backend/platform/phone"
)

// Defaults for webhook-created leads that arrived without case metadata.
const (
	defaultName     = "AI Lead"
	defaultPhone    = "Unknown"
	defaultCaseType = "General"
	defaultUrgency  = "Medium"
	defaultStatus   = "New"
)

// Attorney captures the directory fields the assignment flow needs.
type Attorney struct {
	ID    int64
	Name  string
	Email string
}

// AttorneyDirectory resolves attorneys for the assignment flow.
type AttorneyDirectory interface {
	GetByID(ctx context.Context, id int64) (Attorney, error)
}

// Service implements lead operations.
type Service struct {
	store     repository.TxStore
	window    time.Duration
	attorneys AttorneyDirectory
	bus       events.Bus
	log       *logger.Logger
}

// New creates the leads service. The dedup window bounds how far back the
// phone-number fallback match may reach.
func New(store repository.TxStore, cfg config.ReconcileConfig, attorneys AttorneyDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		window:    cfg.GetDedupWindow(),
		attorneys: attorneys,
		bus:       bus,
		log:       log,
	}
}

// List returns all leads.
func (s *Service) List(ctx context.Context) ([]repository.Lead, error) {
	return s.store.List(ctx)
}

// Get returns a single lead by id.
func (s *Service) Get(ctx context.Context, id int64) (*repository.Lead, error) {
	return s.store.GetByID(ctx, id)
}

// CreateInput is a manual lead entry. Name and phone are validated upstream.
type CreateInput struct {
	Name     string
	Phone    string
	CaseType string
	Urgency  string
	Status   string
	Summary  *string
}

// Create inserts a manually entered lead. The id allocation and the insert
// commit in one transaction.
func (s *Service) Create(ctx context.Context, input CreateInput) (*repository.Lead, error) {
	lead := repository.Lead{
		Name:     input.Name,
		Phone:    input.Phone,
		CaseType: valueOr(input.CaseType, defaultCaseType),
		Urgency:  valueOr(input.Urgency, defaultUrgency),
		Status:   valueOr(input.Status, defaultStatus),
		Summary:  input.Summary,
	}

	var created *repository.Lead
	err := s.store.WithTx(ctx, func(st repository.Store) error {
		id, err := st.NextID(ctx)
		if err != nil {
			return err
		}
		lead.ID = id
		created, err = st.Insert(ctx, lead)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial patch to a lead.
func (s *Service) Update(ctx context.Context, id int64, patch repository.Patch) (*repository.Lead, error) {
	return s.store.ApplyPatch(ctx, id, patch)
}

// AssignAttorney links an attorney to a lead, stamps the contact time, and
// publishes the event that triggers the assignment notification email.
func (s *Service) AssignAttorney(ctx context.Context, leadID, attorneyID int64) (*repository.Lead, error) {
	attorney, err := s.attorneys.GetByID(ctx, attorneyID)
	if err != nil {
		return nil, apperr.Validation("attorney not found")
	}

	lead, err := s.store.AssignAttorney(ctx, leadID, attorneyID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewAttorneyAssigned(
		lead.ID, lead.Name, lead.Phone, lead.CaseType,
		attorney.ID, attorney.Name, attorney.Email,
	))

	return lead, nil
}

// UpsertByCallID reconciles one webhook delivery into a lead.
//
// Resolution order: the call log's lead link, a direct scan by call id for
// legacy rows, then a phone-digit match within the dedup window (which also
// rebinds the lead to the new call id, absorbing provider id churn), and
// finally a fresh insert. Runs under a per-call advisory lock so replayed or
// concurrent deliveries for the same call cannot race the lookup.
func (s *Service) UpsertByCallID(ctx context.Context, callID string, patch repository.Patch) (*repository.Lead, error) {
	var result *repository.Lead
	var created bool

	err := s.store.WithCallLock(ctx, callID, func(st repository.Store) error {
		boundPatch := patch
		boundPatch.CallID = &callID

		if leadID, ok, err := st.FindIDByCallLogLink(ctx, callID); err != nil {
			return err
		} else if ok {
			lead, err := st.ApplyPatch(ctx, leadID, boundPatch)
			result = lead
			return err
		}

		lead, err := st.FindByCallID(ctx, callID)
		if err != nil {
			return err
		}
		if lead != nil {
			result, err = st.ApplyPatch(ctx, lead.ID, boundPatch)
			return err
		}

		if patch.Phone != nil && phone.IsReal(*patch.Phone) {
			since := time.Now().Add(-s.window)
			match, err := st.FindRecentByPhoneDigits(ctx, phone.Digits(*patch.Phone), since)
			if err != nil {
				return err
			}
			if match != nil {
				result, err = st.ApplyPatch(ctx, match.ID, boundPatch)
				return err
			}
		}

		id, err := st.NextID(ctx)
		if err != nil {
			return err
		}
		result, err = st.Insert(ctx, newLeadFromPatch(id, callID, patch))
		created = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewLeadReconciled(result.ID, callID, created))
	return result, nil
}

func newLeadFromPatch(id int64, callID string, patch repository.Patch) repository.Lead {
	lead := repository.Lead{
		ID:       id,
		CallID:   &callID,
		Name:     defaultName,
		Phone:    defaultPhone,
		CaseType: defaultCaseType,
		Urgency:  defaultUrgency,
		Status:   defaultStatus,
	}

	if patch.Name != nil {
		lead.Name = *patch.Name
	}
	if patch.Phone != nil {
		lead.Phone = *patch.Phone
	}
	if patch.CaseType != nil {
		lead.CaseType = *patch.CaseType
	}
	if patch.Urgency != nil {
		lead.Urgency = *patch.Urgency
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	lead.Summary = patch.Summary
	lead.Transcript = patch.Transcript
	lead.AttorneyID = patch.AttorneyID

	return lead
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
