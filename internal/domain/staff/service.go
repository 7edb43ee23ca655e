package staff

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

func (s *Service) Create(ctx context.Context, st *Staff) error {
	if st.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if !ValidRoles[st.Role] {
		return fmt.Errorf("invalid role: %s", st.Role)
	}
	return s.repo.Create(ctx, st)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, st *Staff) error {
	if !ValidRoles[st.Role] {
		return fmt.Errorf("invalid role: %s", st.Role)
	}
	return s.repo.Update(ctx, st)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	if role != "" {
		if !ValidRoles[Role(role)] {
			return nil, 0, fmt.Errorf("invalid role: %s", role)
		}
		return s.repo.ListByRole(ctx, Role(role), limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
