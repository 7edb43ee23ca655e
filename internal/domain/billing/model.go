package billing

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Payment methods accepted at the front desk.
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodGCash    = "gcash"
	MethodTransfer = "bank_transfer"
)

// Transaction maps to the billing_transaction table. Code is assigned by
// the database on insert (TXN-000042 style) and never reused.
type Transaction struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	StaffID       *uuid.UUID `db:"staff_id" json:"staff_id,omitempty"`
	TotalAmount   float64    `db:"total_amount" json:"total_amount"`
	AmountPaid    float64    `db:"amount_paid" json:"amount_paid"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Link maps to the appointment_billing_link table, tying one appointment
// to the transaction that bills it.
type Link struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AppointmentID   uuid.UUID `db:"appointment_id" json:"appointment_id"`
	TransactionID   uuid.UUID `db:"transaction_id" json:"transaction_id"`
	AppointmentType string    `db:"appointment_type" json:"appointment_type"`
	Price           float64   `db:"price" json:"price"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
