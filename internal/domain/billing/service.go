package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// GetByRef resolves a transaction by UUID or by its TXN- code.
func (s *Service) GetByRef(ctx context.Context, ref string) (*Transaction, error) {
	if strings.HasPrefix(ref, "TXN-") {
		return s.repo.GetByCode(ctx, ref)
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction reference: %s", ref)
	}
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	switch status {
	case "", StatusPending, StatusPaid, StatusCancelled:
	default:
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	return s.repo.ListTransactions(ctx, status, patientID, limit, offset)
}

// Pay settles a pending transaction in full.
func (s *Service) Pay(ctx context.Context, id uuid.UUID, method string) (*Transaction, error) {
	switch method {
	case MethodCash, MethodCard, MethodGCash, MethodTransfer:
	default:
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}

	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkPaid(ctx, id, method, t.TotalAmount); err != nil {
		return nil, err
	}
	return s.repo.GetTransaction(ctx, id)
}

// LinkForAppointment returns the billing link behind an appointment.
func (s *Service) LinkForAppointment(ctx context.Context, appointmentID uuid.UUID) (*Link, error) {
	return s.repo.GetLinkByAppointment(ctx, appointmentID)
}
