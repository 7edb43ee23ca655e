package staff

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

const staffCols = `id, full_name, role, specialty, license_number, email, mobile_phone,
	active, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FullName, &s.Role, &s.Specialty, &s.LicenseNumber,
		&s.Email, &s.MobilePhone, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, full_name, role, specialty, license_number, email, mobile_phone, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.FullName, s.Role, s.Specialty, s.LicenseNumber, s.Email, s.MobilePhone, s.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Staff) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET full_name=$2, role=$3, specialty=$4, license_number=$5,
			email=$6, mobile_phone=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.FullName, s.Role, s.Specialty, s.LicenseNumber, s.Email, s.MobilePhone, s.Active)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectStaff(rows, total)
}

func (r *repoPG) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff WHERE role = $1 ORDER BY full_name LIMIT $2 OFFSET $3`,
		role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectStaff(rows, total)
}

func (r *repoPG) FirstActiveByRole(ctx context.Context, role Role) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `
		SELECT `+staffCols+` FROM staff
		WHERE role = $1 AND active
		ORDER BY created_at LIMIT 1`, role))
}

func collectStaff(rows pgx.Rows, total int) ([]*Staff, int, error) {
	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
