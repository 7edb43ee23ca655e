package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Pending exists for walk-ins captured before the
// front desk confirms; approval creates appointments directly as confirmed.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Visit statuses.
const (
	VisitScheduled  = "scheduled"
	VisitInProgress = "in_progress"
	VisitCompleted  = "completed"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	SpecialistID     uuid.UUID  `db:"specialist_id" json:"specialist_id"`
	AppointmentType  string     `db:"appointment_type" json:"appointment_type"`
	ScheduledAt      time.Time  `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes  int        `db:"duration_minutes" json:"duration_minutes"`
	Price            float64    `db:"price" json:"price"`
	Status           string     `db:"status" json:"status"`
	Source           string     `db:"source" json:"source"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	BookingRequestID *uuid.UUID `db:"booking_request_id" json:"booking_request_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Visit maps to the visit table. Every confirmed appointment carries
// exactly one visit record for the clinical encounter.
type Visit struct {
	ID               uuid.UUID `db:"id" json:"id"`
	AppointmentID    uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDateTime    time.Time `db:"visit_datetime" json:"visit_datetime"`
	AttendingStaffID uuid.UUID `db:"attending_staff_id" json:"attending_staff_id"`
	Purpose          string    `db:"purpose" json:"purpose"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
