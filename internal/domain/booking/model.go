package booking

import (
	"time"

	"github.com/google/uuid"
)

// Request statuses. Both approved and rejected are terminal; only the
// approval workflow moves a request to approved.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Appointment sources.
const (
	SourceOnline = "Online"
	SourceWalkIn = "WalkIn"
)

// Request maps to the booking_request table: a patient-submitted appointment
// request awaiting admin review.
type Request struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientFirstName string     `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName  string     `db:"patient_last_name" json:"patient_last_name"`
	MobilePhone      string     `db:"mobile_phone" json:"mobile_phone"`
	Email            *string    `db:"email" json:"email,omitempty"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	SpecialistID     uuid.UUID  `db:"specialist_id" json:"specialist_id"`
	AppointmentType  string     `db:"appointment_type" json:"appointment_type"`
	ScheduledAt      time.Time  `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes  int        `db:"duration_minutes" json:"duration_minutes"`
	Price            float64    `db:"price" json:"price"`
	Source           string     `db:"source" json:"source"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	Status           string     `db:"status" json:"status"`
	AdminNotes       *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	DecidedBy        *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
