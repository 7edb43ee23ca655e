package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. PatientNumber is the human-readable
// code (PT-000123) assigned from a database sequence on first registration.
type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientNumber string     `db:"patient_number" json:"patient_number"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	MobilePhone   string     `db:"mobile_phone" json:"mobile_phone"`
	Email         *string    `db:"email" json:"email,omitempty"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender        *string    `db:"gender" json:"gender,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Normalize canonicalizes the identity fields used for de-duplication:
// names are trimmed and mobile numbers lose separators, so the same person
// booking twice lands on one row.
func (p *Patient) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.MobilePhone = NormalizeMobile(p.MobilePhone)
}

// NormalizeMobile strips spaces, dashes and parentheses from a phone number.
func NormalizeMobile(mobile string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(mobile))
}
