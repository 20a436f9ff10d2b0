package transport

import (
	"time"

	"legalintake_backend/internal/leads/repository"
)

type CreateLeadRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Phone    string  `json:"phone" validate:"required,max=50"`
	CaseType string  `json:"caseType,omitempty" validate:"omitempty,max=120"`
	Urgency  string  `json:"urgency,omitempty" validate:"omitempty,max=50"`
	Status   string  `json:"status,omitempty" validate:"omitempty,oneof=New Qualified Converted Disqualified"`
	Summary  *string `json:"summary,omitempty" validate:"omitempty,max=10000"`
}

type UpdateLeadRequest struct {
	Name       *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone      *string        `json:"phone,omitempty" validate:"omitempty,max=50"`
	CaseType   *string        `json:"caseType,omitempty" validate:"omitempty,max=120"`
	Urgency    *string        `json:"urgency,omitempty" validate:"omitempty,max=50"`
	Status     *string        `json:"status,omitempty" validate:"omitempty,oneof=New Qualified Converted Disqualified"`
	Summary    OptionalString `json:"summary,omitempty" validate:"-"`
	Transcript OptionalString `json:"transcript,omitempty" validate:"-"`
}

// ToPatch maps the request onto the domain patch, preserving the
// absent / present-with-null distinction.
func (r UpdateLeadRequest) ToPatch() repository.Patch {
	return repository.Patch{
		Name:       r.Name,
		Phone:      r.Phone,
		CaseType:   r.CaseType,
		Urgency:    r.Urgency,
		Status:     r.Status,
		Summary:    r.Summary.Overwrite(),
		Transcript: r.Transcript.Overwrite(),
	}
}

type AssignAttorneyRequest struct {
	AttorneyID int64 `json:"attorneyId" validate:"required,gt=0"`
}

type LeadResponse struct {
	ID              int64      `json:"id"`
	CallID          *string    `json:"callId,omitempty"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	CaseType        string     `json:"caseType"`
	Urgency         string     `json:"urgency"`
	Status          string     `json:"status"`
	AttorneyID      *int64     `json:"attorneyId,omitempty"`
	Summary         *string    `json:"summary,omitempty"`
	Transcript      *string    `json:"transcript,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastContactedAt *time.Time `json:"lastContactedAt,omitempty"`
}

// FromLead maps the domain lead to its API shape.
func FromLead(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:              lead.ID,
		CallID:          lead.CallID,
		Name:            lead.Name,
		Phone:           lead.Phone,
		CaseType:        lead.CaseType,
		Urgency:         lead.Urgency,
		Status:          lead.Status,
		AttorneyID:      lead.AttorneyID,
		Summary:         lead.Summary,
		Transcript:      lead.Transcript,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
		LastContactedAt: lead.LastContactedAt,
	}
}

type ListLeadsResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}
