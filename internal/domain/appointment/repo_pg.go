package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinichq/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const appointmentCols = `id, patient_id, specialist_id, appointment_type, scheduled_at,
	duration_minutes, price, status, source, notes, booking_request_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.SpecialistID, &a.AppointmentType, &a.ScheduledAt,
		&a.DurationMinutes, &a.Price, &a.Status, &a.Source, &a.Notes, &a.BookingRequestID,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, specialist_id, appointment_type, scheduled_at,
			duration_minutes, price, status, source, notes, booking_request_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.PatientID, a.SpecialistID, a.AppointmentType, a.ScheduledAt,
		a.DurationMinutes, a.Price, a.Status, a.Source, a.Notes, a.BookingRequestID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where = fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	if patientID != nil {
		args = append(args, *patientID)
		if where == "" {
			where = fmt.Sprintf(` WHERE patient_id = $%d`, len(args))
		} else {
			where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT `+appointmentCols+` FROM appointment`+where+
		` ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository { return &visitRepoPG{pool: pool} }

func (r *visitRepoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const visitCols = `id, appointment_id, patient_id, visit_datetime, attending_staff_id,
	purpose, status, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.AppointmentID, &v.PatientID, &v.VisitDateTime,
		&v.AttendingStaffID, &v.Purpose, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVisitNotFound
	}
	return &v, err
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (id, appointment_id, patient_id, visit_datetime, attending_staff_id, purpose, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		v.ID, v.AppointmentID, v.PatientID, v.VisitDateTime, v.AttendingStaffID, v.Purpose, v.Status)
	return err
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
}

func (r *visitRepoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE appointment_id = $1`, appointmentID))
}

func (r *visitRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Visit, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT `+visitCols+` FROM visit`+where+
		` ORDER BY visit_datetime DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *visitRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE visit SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVisitNotFound
	}
	return nil
}
