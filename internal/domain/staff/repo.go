package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no staff row matches the lookup.
var ErrNotFound = errors.New("staff not found")

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	ListByRole(ctx context.Context, role Role, limit, offset int) ([]*Staff, int, error)
	// FirstActiveByRole returns the longest-serving active staff member with
	// the given role, or ErrNotFound.
	FirstActiveByRole(ctx context.Context, role Role) (*Staff, error)
}
