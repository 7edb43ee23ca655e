package staff

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies a staff member's clinical function.
type Role string

const (
	RoleDoctor  Role = "Doctor"
	RoleMedTech Role = "MedTech"
	RoleAdmin   Role = "Admin"
)

// ValidRoles lists the roles accepted on staff records.
var ValidRoles = map[Role]bool{
	RoleDoctor:  true,
	RoleMedTech: true,
	RoleAdmin:   true,
}

// Staff maps to the staff table. Specialists that patients book against are
// staff rows with role Doctor or MedTech.
type Staff struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Role          Role      `db:"role" json:"role"`
	Specialty     *string   `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber *string   `db:"license_number" json:"license_number,omitempty"`
	Email         *string   `db:"email" json:"email,omitempty"`
	MobilePhone   *string   `db:"mobile_phone" json:"mobile_phone,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
