// Package service implements call log business logic, including the
// webhook-side call log reconciler that keeps exactly one row per real call.
package service

import (
	"context"
	"time"

	"legalintake_backend/internal/calllogs/repository"
	"legalintake_backend/internal/events"
	"legalintake_backend/platform/apperr"
	"legalintake_backend/platform/config"
	"legalintake_backend/platform/logger"
	"legalintake_backend/platform/phone"
)

// Service implements call log operations.
type Service struct {
	store  repository.TxStore
	window time.Duration
	bus    events.Bus
	log    *logger.Logger
}

// New creates the call logs service.
func New(store repository.TxStore, cfg config.ReconcileConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		window: cfg.GetDedupWindow(),
		bus:    bus,
		log:    log,
	}
}

// List returns all call logs.
func (s *Service) List(ctx context.Context) ([]repository.CallLog, error) {
	return s.store.List(ctx)
}

// ListWithLead returns all call logs joined to their lead's display fields.
func (s *Service) ListWithLead(ctx context.Context) ([]repository.CallLogWithLead, error) {
	return s.store.ListWithLead(ctx)
}

// Get returns a single call log by id.
func (s *Service) Get(ctx context.Context, id int64) (*repository.CallLog, error) {
	return s.store.GetByID(ctx, id)
}

// GetByCallID returns the canonical (newest) call log for a call id.
func (s *Service) GetByCallID(ctx context.Context, callID string) (*repository.CallLog, error) {
	logs, err := s.store.FindAllByCallID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, apperr.NotFound("call log not found")
	}
	return &logs[0], nil
}

// Update applies a partial patch to a call log. The UI-editable allow-list is
// enforced at the transport layer.
func (s *Service) Update(ctx context.Context, id int64, patch repository.Patch) (*repository.CallLog, error) {
	return s.store.ApplyPatch(ctx, id, patch)
}

// UpsertByCallID reconciles one webhook delivery into a call log.
//
// The newest row for the call id is canonical; any older rows for the same id
// are hard-deleted on the way through, healing historical double-inserts. On
// a miss, a dedup match within the window is tried first by lead id, then by
// agent id plus phone digits, rebinding the matched row to the new call id.
// Only then is a fresh row inserted.
func (s *Service) UpsertByCallID(ctx context.Context, callID string, patch repository.Patch) (*repository.CallLog, error) {
	var result *repository.CallLog
	var created bool

	err := s.store.WithCallLock(ctx, callID, func(st repository.Store) error {
		boundPatch := patch
		boundPatch.CallID = &callID

		logs, err := st.FindAllByCallID(ctx, callID)
		if err != nil {
			return err
		}
		if len(logs) > 0 {
			if err := deleteOlderDuplicates(ctx, st, logs); err != nil {
				return err
			}
			result, err = st.ApplyPatch(ctx, logs[0].ID, boundPatch)
			return err
		}

		since := time.Now().Add(-s.window)

		if patch.LeadID != nil {
			match, err := st.FindRecentByLeadID(ctx, *patch.LeadID, since)
			if err != nil {
				return err
			}
			if match != nil {
				result, err = st.ApplyPatch(ctx, match.ID, boundPatch)
				return err
			}
		}

		if patch.AgentID != nil && patch.PhoneNumber != nil && phone.IsReal(*patch.PhoneNumber) {
			match, err := st.FindRecentByAgentAndPhone(ctx, *patch.AgentID, phone.Digits(*patch.PhoneNumber), since)
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
		result, err = st.Insert(ctx, newCallLogFromPatch(id, callID, patch))
		created = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	eventType := ""
	if result.Status != nil {
		eventType = *result.Status
	}
	s.bus.Publish(ctx, events.NewCallLogReconciled(result.ID, callID, result.LeadID, eventType, created))
	return result, nil
}

// CollapseDuplicates removes all but the newest row for a call id and
// returns how many rows were deleted.
func (s *Service) CollapseDuplicates(ctx context.Context, callID string) (int, error) {
	removed := 0
	err := s.store.WithCallLock(ctx, callID, func(st repository.Store) error {
		logs, err := st.FindAllByCallID(ctx, callID)
		if err != nil {
			return err
		}
		if len(logs) <= 1 {
			return nil
		}
		removed = len(logs) - 1
		return deleteOlderDuplicates(ctx, st, logs)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SweepDuplicates collapses duplicates across every call id seen since the
// given time. Used by the periodic sweep and the backfill command.
func (s *Service) SweepDuplicates(ctx context.Context, since time.Time) (int, error) {
	callIDs, err := s.store.ListRecentCallIDs(ctx, since)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, callID := range callIDs {
		removed, err := s.CollapseDuplicates(ctx, callID)
		if err != nil {
			s.log.Error("duplicate collapse failed", "call_id", callID, "error", err)
			continue
		}
		total += removed
	}
	return total, nil
}

func deleteOlderDuplicates(ctx context.Context, st repository.Store, newestFirst []repository.CallLog) error {
	if len(newestFirst) <= 1 {
		return nil
	}
	ids := make([]int64, 0, len(newestFirst)-1)
	for _, dup := range newestFirst[1:] {
		ids = append(ids, dup.ID)
	}
	return st.DeleteByIDs(ctx, ids)
}

// statusInProgress is the insert default for deliveries that carry no status
// alias, typically intermediate events for a call still in flight. The status
// column is NOT NULL, like phone_number.
const statusInProgress = "in_progress"

func newCallLogFromPatch(id int64, callID string, patch repository.Patch) repository.CallLog {
	log := repository.CallLog{
		ID:               id,
		CallID:           callID,
		LeadID:           patch.LeadID,
		AgentID:          patch.AgentID,
		PhoneNumber:      "Unknown",
		Status:           patch.Status,
		Direction:        patch.Direction,
		Duration:         patch.Duration,
		RecordingURL:     patch.RecordingURL,
		Summary:          patch.Summary,
		Transcript:       patch.Transcript,
		Sentiment:        patch.Sentiment,
		DisconnectReason: patch.DisconnectReason,
		Analysis:         patch.Analysis,
		City:             patch.City,
		StateProvince:    patch.StateProvince,
		Email:            patch.Email,
		Address:          patch.Address,
		CaseType:         patch.CaseType,
		CaseNotes:        patch.CaseNotes,
	}
	if patch.PhoneNumber != nil {
		log.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Status == nil {
		status := statusInProgress
		log.Status = &status
	}
	return log
}
