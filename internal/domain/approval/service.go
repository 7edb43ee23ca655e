package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinichq/clinic/internal/domain/appointment"
	"github.com/clinichq/clinic/internal/domain/billing"
	"github.com/clinichq/clinic/internal/domain/booking"
	"github.com/clinichq/clinic/internal/domain/patient"
	"github.com/clinichq/clinic/internal/domain/staff"
	"github.com/clinichq/clinic/internal/platform/notification"
)

// TxRunner executes a function inside one database transaction. Satisfied
// by *db.TxRunner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier delivers patient-facing messages. Satisfied by
// *notification.Manager.
type Notifier interface {
	Send(ctx context.Context, templateID, recipient string, data, metadata map[string]string) (*notification.Notification, error)
}

// Result reports everything a single approval created.
type Result struct {
	RequestID       uuid.UUID `json:"request_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	PatientNumber   string    `json:"patient_number"`
	AppointmentID   uuid.UUID `json:"appointment_id"`
	VisitID         uuid.UUID `json:"visit_id"`
	TransactionID   uuid.UUID `json:"transaction_id"`
	TransactionCode string    `json:"transaction_code"`
}

// Service turns an approved booking request into the full set of clinical
// and billing records, atomically.
type Service struct {
	tx           TxRunner
	bookings     booking.Repository
	patients     patient.Repository
	staff        staff.Repository
	resolver     *staff.AttendingResolver
	appointments appointment.Repository
	visits       appointment.VisitRepository
	billing      billing.Repository
	notifier     Notifier
	logger       zerolog.Logger
}

func NewService(
	tx TxRunner,
	bookings booking.Repository,
	patients patient.Repository,
	staffRepo staff.Repository,
	resolver *staff.AttendingResolver,
	appointments appointment.Repository,
	visits appointment.VisitRepository,
	billingRepo billing.Repository,
	notifier Notifier,
	logger zerolog.Logger,
) *Service {
	return &Service{
		tx:           tx,
		bookings:     bookings,
		patients:     patients,
		staff:        staffRepo,
		resolver:     resolver,
		appointments: appointments,
		visits:       visits,
		billing:      billingRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// Approve processes a pending booking request. Inside one transaction it
// resolves the patient (de-duplicating on mobile + name), creates the
// confirmed appointment, its visit, the billing transaction and the link
// between them, then marks the request approved. Either every record exists
// afterwards or none does. The confirmation notification goes out only
// after the transaction commits.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, adminID, adminNotes string) (*Result, error) {
	var (
		result Result
		req    *booking.Request
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		// Row lock so two admins approving the same request serialize; the
		// loser sees the updated status and backs out.
		req, err = s.bookings.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if req.Status != booking.StatusPending {
			return ErrAlreadyProcessed
		}

		sp, err := s.staff.GetByID(ctx, req.SpecialistID)
		if err != nil {
			if errors.Is(err, staff.ErrNotFound) {
				return ErrInvalidSpecialist
			}
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !sp.Active {
			return ErrInvalidSpecialist
		}

		r, err := s.createRecords(ctx, chainInput{
			firstName:       req.PatientFirstName,
			lastName:        req.PatientLastName,
			mobilePhone:     req.MobilePhone,
			email:           req.Email,
			dateOfBirth:     req.DateOfBirth,
			gender:          req.Gender,
			address:         req.Address,
			specialist:      sp,
			appointmentType: req.AppointmentType,
			scheduledAt:     req.ScheduledAt,
			durationMinutes: req.DurationMinutes,
			price:           req.Price,
			source:          req.Source,
			notes:           req.Notes,
			requestID:       &req.ID,
		})
		if err != nil {
			return err
		}
		result = *r
		result.RequestID = req.ID

		if err := s.bookings.MarkApproved(ctx, requestID, adminID, adminNotes, time.Now()); err != nil {
			if errors.Is(err, booking.ErrAlreadyDecided) {
				return ErrAlreadyProcessed
			}
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyConfirmed(ctx, req.MobilePhone, req.PatientFirstName+" "+req.PatientLastName,
		req.AppointmentType, req.ScheduledAt, &result)
	return &result, nil
}

// WalkInInput captures a front-desk registration for a patient who arrived
// without booking online.
type WalkInInput struct {
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	MobilePhone     string     `json:"mobile_phone"`
	Email           *string    `json:"email,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Gender          *string    `json:"gender,omitempty"`
	Address         *string    `json:"address,omitempty"`
	SpecialistID    uuid.UUID  `json:"specialist_id"`
	AppointmentType string     `json:"appointment_type"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Price           float64    `json:"price"`
	Notes           *string    `json:"notes,omitempty"`
}

// RegisterWalkIn creates the same record chain as Approve but without a
// booking request behind it.
func (s *Service) RegisterWalkIn(ctx context.Context, in WalkInInput) (*Result, error) {
	if in.FirstName == "" || in.LastName == "" || in.MobilePhone == "" {
		return nil, fmt.Errorf("first_name, last_name and mobile_phone are required")
	}
	if in.AppointmentType == "" {
		return nil, fmt.Errorf("appointment_type is required")
	}
	if in.ScheduledAt.IsZero() {
		in.ScheduledAt = time.Now()
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 30
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	var result Result
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sp, err := s.staff.GetByID(ctx, in.SpecialistID)
		if err != nil {
			if errors.Is(err, staff.ErrNotFound) {
				return ErrInvalidSpecialist
			}
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !sp.Active {
			return ErrInvalidSpecialist
		}

		r, err := s.createRecords(ctx, chainInput{
			firstName:       in.FirstName,
			lastName:        in.LastName,
			mobilePhone:     in.MobilePhone,
			email:           in.Email,
			dateOfBirth:     in.DateOfBirth,
			gender:          in.Gender,
			address:         in.Address,
			specialist:      sp,
			appointmentType: in.AppointmentType,
			scheduledAt:     in.ScheduledAt,
			durationMinutes: in.DurationMinutes,
			price:           in.Price,
			source:          booking.SourceWalkIn,
			notes:           in.Notes,
		})
		if err != nil {
			return err
		}
		result = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyConfirmed(ctx, in.MobilePhone, in.FirstName+" "+in.LastName,
		in.AppointmentType, in.ScheduledAt, &result)
	return &result, nil
}

type chainInput struct {
	firstName, lastName, mobilePhone string
	email                            *string
	dateOfBirth                      *time.Time
	gender                           *string
	address                          *string
	specialist                       *staff.Staff
	appointmentType                  string
	scheduledAt                      time.Time
	durationMinutes                  int
	price                            float64
	source                           string
	notes                            *string
	requestID                        *uuid.UUID
}

// createRecords builds the patient/appointment/visit/billing chain. Must be
// called inside a transaction; every storage error is wrapped in
// ErrPersistence so the caller rolls back as one unit.
func (s *Service) createRecords(ctx context.Context, in chainInput) (*Result, error) {
	p := &patient.Patient{
		FirstName:   in.firstName,
		LastName:    in.lastName,
		MobilePhone: in.mobilePhone,
		Email:       in.email,
		DateOfBirth: in.dateOfBirth,
		Gender:      in.gender,
		Address:     in.address,
	}
	if err := s.patients.FindOrCreate(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	appt := &appointment.Appointment{
		PatientID:        p.ID,
		SpecialistID:     in.specialist.ID,
		AppointmentType:  in.appointmentType,
		ScheduledAt:      in.scheduledAt,
		DurationMinutes:  in.durationMinutes,
		Price:            in.price,
		Status:           appointment.StatusConfirmed,
		Source:           in.source,
		Notes:            in.notes,
		BookingRequestID: in.requestID,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	attending, err := s.resolver.Resolve(ctx, in.specialist.Role)
	if err != nil {
		if errors.Is(err, staff.ErrNoAttendingStaff) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	visit := &appointment.Visit{
		AppointmentID:    appt.ID,
		PatientID:        p.ID,
		VisitDateTime:    in.scheduledAt,
		AttendingStaffID: attending.ID,
		Purpose:          in.appointmentType,
		Status:           appointment.VisitScheduled,
	}
	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	txn := &billing.Transaction{
		PatientID:   p.ID,
		StaffID:     &attending.ID,
		TotalAmount: in.price,
		Status:      billing.StatusPending,
	}
	if err := s.billing.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	link := &billing.Link{
		AppointmentID:   appt.ID,
		TransactionID:   txn.ID,
		AppointmentType: in.appointmentType,
		Price:           in.price,
		Status:          billing.StatusPending,
	}
	if err := s.billing.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &Result{
		PatientID:       p.ID,
		PatientNumber:   p.PatientNumber,
		AppointmentID:   appt.ID,
		VisitID:         visit.ID,
		TransactionID:   txn.ID,
		TransactionCode: txn.Code,
	}, nil
}

// notifyConfirmed is fire-and-forget; the records are already committed and
// a failed message must not undo them.
func (s *Service) notifyConfirmed(ctx context.Context, mobile, patientName, appointmentType string, scheduledAt time.Time, r *Result) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Send(ctx, "appointment-confirmed", mobile,
		map[string]string{
			"patient_name":     patientName,
			"patient_number":   r.PatientNumber,
			"appointment_type": appointmentType,
			"date":             scheduledAt.Format("2006-01-02"),
			"time":             scheduledAt.Format("3:04 PM"),
			"appointment_id":   r.AppointmentID.String(),
		},
		map[string]string{"appointment_id": r.AppointmentID.String()},
	); err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", r.AppointmentID.String()).
			Msg("confirmation notification failed")
	}
}
