package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("billing transaction not found")
	ErrLinkNotFound = errors.New("billing link not found")
	ErrAlreadyPaid  = errors.New("billing transaction already settled")
)

type Repository interface {
	// CreateTransaction inserts the transaction and reads back the
	// database-assigned code.
	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByCode(ctx context.Context, code string) (*Transaction, error)
	ListTransactions(ctx context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*Transaction, int, error)
	// MarkPaid settles a pending transaction. ErrAlreadyPaid when it is
	// no longer pending.
	MarkPaid(ctx context.Context, id uuid.UUID, method string, amount float64) error

	CreateLink(ctx context.Context, l *Link) error
	GetLinkByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Link, error)
}
