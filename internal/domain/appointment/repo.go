package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrVisitNotFound = errors.New("visit not found")
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type VisitRepository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Visit, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Visit, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
