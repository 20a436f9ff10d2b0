// Package service implements attorney directory operations.
package service

import (
	"context"

	"legalintake_backend/internal/attorneys/repository"
	leadservice "legalintake_backend/internal/leads/service"
)

// Service implements attorney operations.
type Service struct {
	repo *repository.Repository
}

// New creates the attorneys service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// List returns all attorneys.
func (s *Service) List(ctx context.Context) ([]repository.Attorney, error) {
	return s.repo.List(ctx)
}

// Get returns a single attorney by id.
func (s *Service) Get(ctx context.Context, id int64) (*repository.Attorney, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a new attorney.
func (s *Service) Create(ctx context.Context, attorney repository.Attorney) (*repository.Attorney, error) {
	return s.repo.Create(ctx, attorney)
}

// Directory adapts the service to the lead module's AttorneyDirectory port.
type Directory struct {
	svc *Service
}

// NewDirectory creates the adapter used by the lead assignment flow.
func NewDirectory(svc *Service) *Directory {
	return &Directory{svc: svc}
}

// GetByID resolves an attorney for assignment.
func (d *Directory) GetByID(ctx context.Context, id int64) (leadservice.Attorney, error) {
	attorney, err := d.svc.Get(ctx, id)
	if err != nil {
		return leadservice.Attorney{}, err
	}
	return leadservice.Attorney{
		ID:    attorney.ID,
		Name:  attorney.Name,
		Email: attorney.Email,
	}, nil
}
