package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinichq/clinic/internal/domain/patient"
	"github.com/clinichq/clinic/internal/domain/staff"
	"github.com/clinichq/clinic/internal/platform/notification"
)

// Notifier delivers patient-facing messages. Satisfied by
// *notification.Manager.
type Notifier interface {
	Send(ctx context.Context, templateID, recipient string, data, metadata map[string]string) (*notification.Notification, error)
}

type Service struct {
	repo     Repository
	staff    staff.Repository
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, staffRepo staff.Repository, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, staff: staffRepo, notifier: notifier, logger: logger}
}

// Submit validates and stores a patient-submitted booking request. The
// request enters review as pending; nothing else is created until an admin
// decides it.
func (s *Service) Submit(ctx context.Context, req *Request) error {
	req.PatientFirstName = strings.TrimSpace(req.PatientFirstName)
	req.PatientLastName = strings.TrimSpace(req.PatientLastName)
	req.MobilePhone = patient.NormalizeMobile(req.MobilePhone)

	if req.PatientFirstName == "" || req.PatientLastName == "" {
		return fmt.Errorf("patient_first_name and patient_last_name are required")
	}
	if req.MobilePhone == "" {
		return fmt.Errorf("mobile_phone is required")
	}
	if req.SpecialistID == uuid.Nil {
		return fmt.Errorf("specialist_id is required")
	}
	if req.AppointmentType == "" {
		return fmt.Errorf("appointment_type is required")
	}
	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if req.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 30
	}
	if req.Source == "" {
		req.Source = SourceOnline
	}
	if req.Source != SourceOnline && req.Source != SourceWalkIn {
		return fmt.Errorf("invalid source: %s", req.Source)
	}

	sp, err := s.staff.GetByID(ctx, req.SpecialistID)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			return fmt.Errorf("unknown specialist")
		}
		return err
	}
	if !sp.Active {
		return fmt.Errorf("specialist is not accepting bookings")
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return err
	}

	s.notify(ctx, req, "booking-received", map[string]string{
		"patient_name": req.PatientFirstName + " " + req.PatientLastName,
		"date":         req.ScheduledAt.Format("2006-01-02"),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Reject marks a pending request rejected. Rejected is terminal; a request
// that was already decided comes back as ErrAlreadyDecided so callers can
// tell a lost race from a hard failure.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, adminID, notes string) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.MarkRejected(ctx, id, adminID, notes, time.Now()); err != nil {
		return err
	}

	s.notify(ctx, req, "appointment-rejected", map[string]string{
		"patient_name": req.PatientFirstName + " " + req.PatientLastName,
		"date":         req.ScheduledAt.Format("2006-01-02"),
		"reason":       notes,
	})
	return nil
}

// notify is fire-and-forget: the decision already happened, delivery
// problems belong to the dispatcher.
func (s *Service) notify(ctx context.Context, req *Request, template string, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Send(ctx, template, req.MobilePhone, data,
		map[string]string{"booking_request_id": req.ID.String()}); err != nil {
		s.logger.Warn().Err(err).
			Str("booking_request_id", req.ID.String()).
			Str("template", template).
			Msg("notification delivery failed")
	}
}
