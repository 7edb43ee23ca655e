package billing

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

const txnCols = `id, code, patient_id, staff_id, total_amount, amount_paid,
	payment_method, status, created_at, updated_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Code, &t.PatientID, &t.StaffID, &t.TotalAmount,
		&t.AmountPaid, &t.PaymentMethod, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) CreateTransaction(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	if t.Status == "" {
		t.Status = StatusPending
	}
	// code comes from the column default (billing_txn_code_seq); RETURNING
	// reads it back without a second round trip.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO billing_transaction (id, patient_id, staff_id, total_amount, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING code, created_at, updated_at`,
		t.ID, t.PatientID, t.StaffID, t.TotalAmount, t.Status).
		Scan(&t.Code, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx,
		`SELECT `+txnCols+` FROM billing_transaction WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx,
		`SELECT `+txnCols+` FROM billing_transaction WHERE code = $1`, code))
}

func (r *repoPG) ListTransactions(ctx context.Context, status string, patientID *uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
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
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM billing_transaction`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT `+txnCols+` FROM billing_transaction`+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *repoPG) MarkPaid(ctx context.Context, id uuid.UUID, method string, amount float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_transaction
		SET status = 'paid', payment_method = $2, amount_paid = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, method, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetTransaction(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyPaid
	}
	return nil
}

func (r *repoPG) CreateLink(ctx context.Context, l *Link) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_billing_link (id, appointment_id, transaction_id, appointment_type, price, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.AppointmentID, l.TransactionID, l.AppointmentType, l.Price, l.Status)
	return err
}

func (r *repoPG) GetLinkByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Link, error) {
	var l Link
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, appointment_id, transaction_id, appointment_type, price, status, created_at
		FROM appointment_billing_link WHERE appointment_id = $1`, appointmentID).
		Scan(&l.ID, &l.AppointmentID, &l.TransactionID, &l.AppointmentType, &l.Price, &l.Status, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	return &l, err
}
