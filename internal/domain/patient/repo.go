package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the lookup.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	// FindOrCreate resolves the canonical patient row for p's identity
	// fields (mobile + name), creating it with a fresh patient number when
	// no match exists. p is updated in place with the surviving row.
	FindOrCreate(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNumber(ctx context.Context, patientNumber string) (*Patient, error)
	FindByIdentity(ctx context.Context, firstName, lastName, mobile string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error)
}
