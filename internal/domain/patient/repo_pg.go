package patient

import (
	"context"
	"errors"

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

const patientCols = `id, patient_number, first_name, last_name, mobile_phone, email,
	date_of_birth, gender, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PatientNumber, &p.FirstName, &p.LastName, &p.MobilePhone,
		&p.Email, &p.DateOfBirth, &p.Gender, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

// FindOrCreate upserts on the patient identity key. The unique index on
// (mobile_phone, lower(first_name), lower(last_name)) makes this safe under
// concurrent approvals for the same person: both land on one row.
// patient_number is assigned by the column default (patient_number_seq).
func (r *repoPG) FindOrCreate(ctx context.Context, p *Patient) error {
	p.Normalize()
	got, err := scanPatient(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, first_name, last_name, mobile_phone, email, date_of_birth, gender, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (mobile_phone, lower(first_name), lower(last_name))
		DO UPDATE SET updated_at = NOW()
		RETURNING `+patientCols,
		uuid.New(), p.FirstName, p.LastName, p.MobilePhone, p.Email, p.DateOfBirth, p.Gender, p.Address))
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByNumber(ctx context.Context, patientNumber string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE patient_number = $1`, patientNumber))
}

func (r *repoPG) FindByIdentity(ctx context.Context, firstName, lastName, mobile string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE mobile_phone = $1 AND lower(first_name) = lower($2) AND lower(last_name) = lower($3)`,
		NormalizeMobile(mobile), firstName, lastName))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + term + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patient
		WHERE patient_number ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1 OR mobile_phone ILIKE $1`,
		pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE patient_number ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1 OR mobile_phone ILIKE $1
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
