package staff

import (
	"context"
	"errors"
)

// ErrNoAttendingStaff is returned when the resolution policy exhausts every
// fallback without finding an active staff member.
var ErrNoAttendingStaff = errors.New("no active staff available to attend the visit")

// AttendingResolver picks the staff member who will attend a visit for a
// specialist of the given role. Historical booking data is sometimes missing
// role-specific staff, so the fallback to an active admin is an explicit
// policy branch rather than a silent default.
type AttendingResolver struct {
	repo Repository
}

func NewAttendingResolver(repo Repository) *AttendingResolver {
	return &AttendingResolver{repo: repo}
}

// Resolve returns the attending staff member for a visit booked against a
// specialist with the given role:
//  1. Doctor or MedTech bookings get an active staff member of that role.
//  2. If none exists (or the role is anything else), any active admin.
//  3. With no active admin either, ErrNoAttendingStaff.
func (r *AttendingResolver) Resolve(ctx context.Context, role Role) (*Staff, error) {
	if role == RoleDoctor || role == RoleMedTech {
		s, err := r.repo.FirstActiveByRole(ctx, role)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	s, err := r.repo.FirstActiveByRole(ctx, RoleAdmin)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoAttendingStaff
		}
		return nil, err
	}
	return s, nil
}
