package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no request matches the lookup.
	ErrNotFound = errors.New("booking request not found")
	// ErrAlreadyDecided is returned by Mark* when the request is no longer
	// pending; the row is left untouched.
	ErrAlreadyDecided = errors.New("booking request already decided")
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// GetByIDForUpdate locks the request row for the duration of the
	// surrounding transaction. Callers must be inside db.RunInTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Request, int, error)
	// MarkApproved transitions a pending request to approved. Fails with
	// ErrAlreadyDecided when the request is not pending.
	MarkApproved(ctx context.Context, id uuid.UUID, adminID, notes string, at time.Time) error
	// MarkRejected transitions a pending request to rejected.
	MarkRejected(ctx context.Context, id uuid.UUID, adminID, notes string, at time.Time) error
}
