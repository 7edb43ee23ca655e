package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const requestCols = `id, patient_first_name, patient_last_name, mobile_phone, email,
	date_of_birth, gender, address, specialist_id, appointment_type, scheduled_at,
	duration_minutes, price, source, notes, status, admin_notes, decided_by, decided_at,
	created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.PatientFirstName, &req.PatientLastName, &req.MobilePhone,
		&req.Email, &req.DateOfBirth, &req.Gender, &req.Address, &req.SpecialistID,
		&req.AppointmentType, &req.ScheduledAt, &req.DurationMinutes, &req.Price,
		&req.Source, &req.Notes, &req.Status, &req.AdminNotes, &req.DecidedBy,
		&req.DecidedAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &req, err
}

func (r *repoPG) Create(ctx context.Context, req *Request) error {
	req.ID = uuid.New()
	req.Status = StatusPending
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking_request (id, patient_first_name, patient_last_name, mobile_phone,
			email, date_of_birth, gender, address, specialist_id, appointment_type,
			scheduled_at, duration_minutes, price, source, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		req.ID, req.PatientFirstName, req.PatientLastName, req.MobilePhone,
		req.Email, req.DateOfBirth, req.Gender, req.Address, req.SpecialistID,
		req.AppointmentType, req.ScheduledAt, req.DurationMinutes, req.Price,
		req.Source, req.Notes, req.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM booking_request WHERE id = $1`, id))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM booking_request WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking_request`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT `+requestCols+` FROM booking_request`+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, rows.Err()
}

func (r *repoPG) MarkApproved(ctx context.Context, id uuid.UUID, adminID, notes string, at time.Time) error {
	return r.decide(ctx, id, StatusApproved, adminID, notes, at)
}

func (r *repoPG) MarkRejected(ctx context.Context, id uuid.UUID, adminID, notes string, at time.Time) error {
	return r.decide(ctx, id, StatusRejected, adminID, notes, at)
}

// decide guards the terminal transition with status='pending' in the WHERE
// clause; a zero row count means another admin got there first.
func (r *repoPG) decide(ctx context.Context, id uuid.UUID, status, adminID, notes string, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking_request
		SET status=$2, decided_by=$3, admin_notes=NULLIF($4,''), decided_at=$5, updated_at=NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, status, adminID, notes, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyDecided
	}
	return nil
}
