package transport

import (
	"time"

	"legalintake_backend/internal/attorneys/repository"
)

type CreateAttorneyRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=200"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Specialty *string `json:"specialty,omitempty" validate:"omitempty,max=120"`
}

type AttorneyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromAttorney maps the domain attorney to its API shape.
func FromAttorney(a repository.Attorney) AttorneyResponse {
	return AttorneyResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Specialty: a.Specialty,
		CreatedAt: a.CreatedAt,
	}
}

type ListAttorneysResponse struct {
	Items []AttorneyResponse `json:"items"`
	Total int                `json:"total"`
}
