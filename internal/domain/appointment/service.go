package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a lifecycle change is not allowed
// from the record's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

type Service struct {
	repo   Repository
	visits VisitRepository
}

func NewService(repo Repository, visits VisitRepository) *Service {
	return &Service{repo: repo, visits: visits}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	switch status {
	case "", StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
	default:
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	return s.repo.List(ctx, status, patientID, limit, offset)
}

// Complete closes out a confirmed appointment and its visit in one step.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot complete a %s appointment", ErrInvalidTransition, a.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCompleted); err != nil {
		return nil, err
	}
	a.Status = StatusCompleted

	if v, err := s.visits.GetByAppointment(ctx, id); err == nil && v.Status != VisitCompleted {
		if err := s.visits.UpdateStatus(ctx, v.ID, VisitCompleted); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Cancel aborts an appointment that has not been seen yet.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending && a.Status != StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot cancel a %s appointment", ErrInvalidTransition, a.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	a.Status = StatusCancelled
	return a, nil
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, status string, limit, offset int) ([]*Visit, int, error) {
	switch status {
	case "", VisitScheduled, VisitInProgress, VisitCompleted:
	default:
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	return s.visits.List(ctx, status, limit, offset)
}

// StartVisit marks the encounter as underway when the patient is called in.
func (s *Service) StartVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != VisitScheduled {
		return nil, fmt.Errorf("%w: cannot start a %s visit", ErrInvalidTransition, v.Status)
	}
	if err := s.visits.UpdateStatus(ctx, id, VisitInProgress); err != nil {
		return nil, err
	}
	v.Status = VisitInProgress
	return v, nil
}

// CompleteVisit closes the encounter. Allowed from scheduled too, for
// short encounters the front desk never explicitly started.
func (s *Service) CompleteVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == VisitCompleted {
		return nil, fmt.Errorf("%w: visit is already completed", ErrInvalidTransition)
	}
	if err := s.visits.UpdateStatus(ctx, id, VisitCompleted); err != nil {
		return nil, err
	}
	v.Status = VisitCompleted
	return v, nil
}
