package transport

import (
	"time"

	"legalintake_backend/internal/calllogs/repository"
)

// UpdateCallLogRequest is the UI-editable case metadata allow-list. Webhook
// ingested fields (transcript, analysis, recording) are never editable here.
type UpdateCallLogRequest struct {
	City          *string `json:"city,omitempty" validate:"omitempty,max=120"`
	StateProvince *string `json:"stateProvince,omitempty" validate:"omitempty,max=120"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=300"`
	CaseType      *string `json:"caseType,omitempty" validate:"omitempty,max=120"`
	CaseNotes     *string `json:"caseNotes,omitempty" validate:"omitempty,max=10000"`
}

// ToPatch maps the request onto the domain patch.
func (r UpdateCallLogRequest) ToPatch() repository.Patch {
	return repository.Patch{
		City:          r.City,
		StateProvince: r.StateProvince,
		Email:         r.Email,
		Address:       r.Address,
		CaseType:      r.CaseType,
		CaseNotes:     r.CaseNotes,
	}
}

type ListCallLogsRequest struct {
	WithLead bool `form:"withLead"`
}

type LeadSummaryResponse struct {
	Name       string `json:"name"`
	CaseType   string `json:"caseType"`
	Urgency    string `json:"urgency"`
	AttorneyID *int64 `json:"attorneyId,omitempty"`
}

type CallLogResponse struct {
	ID               int64                `json:"id"`
	CallID           string               `json:"callId"`
	LeadID           *int64               `json:"leadId,omitempty"`
	AgentID          *string              `json:"agentId,omitempty"`
	PhoneNumber      string               `json:"phoneNumber"`
	Status           *string              `json:"status,omitempty"`
	Direction        *string              `json:"direction,omitempty"`
	Duration         *int                 `json:"duration,omitempty"`
	RecordingURL     *string              `json:"recordingUrl,omitempty"`
	Summary          *string              `json:"summary,omitempty"`
	Transcript       *string              `json:"transcript,omitempty"`
	Sentiment        *string              `json:"sentiment,omitempty"`
	DisconnectReason *string              `json:"disconnectReason,omitempty"`
	Analysis         map[string]any       `json:"analysis,omitempty"`
	City             *string              `json:"city,omitempty"`
	StateProvince    *string              `json:"stateProvince,omitempty"`
	Email            *string              `json:"email,omitempty"`
	Address          *string              `json:"address,omitempty"`
	CaseType         *string              `json:"caseType,omitempty"`
	CaseNotes        *string              `json:"caseNotes,omitempty"`
	IsComplete       bool                 `json:"isComplete"`
	Lead             *LeadSummaryResponse `json:"lead,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// FromCallLog maps a call log to its API shape. isComplete is computed here
// at read time, never stored.
func FromCallLog(log repository.CallLog, isComplete bool) CallLogResponse {
	return CallLogResponse{
		ID:               log.ID,
		CallID:           log.CallID,
		LeadID:           log.LeadID,
		AgentID:          log.AgentID,
		PhoneNumber:      log.PhoneNumber,
		Status:           log.Status,
		Direction:        log.Direction,
		Duration:         log.Duration,
		RecordingURL:     log.RecordingURL,
		Summary:          log.Summary,
		Transcript:       log.Transcript,
		Sentiment:        log.Sentiment,
		DisconnectReason: log.DisconnectReason,
		Analysis:         log.Analysis,
		City:             log.City,
		StateProvince:    log.StateProvince,
		Email:            log.Email,
		Address:          log.Address,
		CaseType:         log.CaseType,
		CaseNotes:        log.CaseNotes,
		IsComplete:       isComplete,
		CreatedAt:        log.CreatedAt,
		UpdatedAt:        log.UpdatedAt,
	}
}

// FromCallLogWithLead adds the joined lead display fields.
func FromCallLogWithLead(item repository.CallLogWithLead, isComplete bool) CallLogResponse {
	resp := FromCallLog(item.CallLog, isComplete)
	if item.Lead != nil {
		resp.Lead = &LeadSummaryResponse{
			Name:       item.Lead.Name,
			CaseType:   item.Lead.CaseType,
			Urgency:    item.Lead.Urgency,
			AttorneyID: item.Lead.AttorneyID,
		}
	}
	return resp
}

type ListCallLogsResponse struct {
	Items []CallLogResponse `json:"items"`
	Total int               `json:"total"`
}
