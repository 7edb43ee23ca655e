package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the canonical patient record for the given identity,
// registering a new patient when none exists.
func (s *Service) Resolve(ctx context.Context, p *Patient) error {
	p.Normalize()
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.MobilePhone == "" {
		return fmt.Errorf("mobile_phone is required")
	}
	return s.repo.FindOrCreate(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, patientNumber string) (*Patient, error) {
	return s.repo.GetByNumber(ctx, patientNumber)
}

func (s *Service) List(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	if term != "" {
		return s.repo.Search(ctx, term, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
