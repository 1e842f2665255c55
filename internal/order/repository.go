package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	GetByTransactionID(ctx context.Context, tranID string) (*Order, error)
	Exists(ctx context.Context, tranID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)

	// MarkPaid flips an unpaid order to paid and reports whether a row changed.
	MarkPaid(ctx context.Context, tranID string, valID *string) (bool, error)
	// DeleteUnpaid removes an unpaid order and reports whether a row was removed.
	DeleteUnpaid(ctx context.Context, tranID string) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, transaction_id, paid_status, total_amount, currency,
	customer_name, customer_email, customer_address, created_at, paid_at, val_id`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var (
		o      Order
		paidAt sql.NullTime
		valID  sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.TransactionID, &o.PaidStatus, &o.TotalAmount, &o.Currency,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerAddress, &o.CreatedAt, &paidAt, &valID,
	)
	if err != nil {
		return o, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	if valID.Valid {
		v := valID.String
		o.ValID = &v
	}
	return o, nil
}

func (r *repository) Create(ctx context.Context, o Order) (Order, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			transaction_id, paid_status, total_amount, currency,
			customer_name, customer_email, customer_address
		) VALUES ($1, false, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		o.TransactionID, o.TotalAmount, o.Currency,
		o.CustomerName, o.CustomerEmail, o.CustomerAddress,
	).Scan(&o.ID, &o.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return o, ErrDuplicateTransaction
	}
	if err != nil {
		return o, err
	}
	o.PaidStatus = false
	return o, nil
}

func (r *repository) GetByTransactionID(ctx context.Context, tranID string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE transaction_id = $1", tranID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Exists(ctx context.Context, tranID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM orders WHERE transaction_id = $1)", tranID,
	).Scan(&exists)
	return exists, err
}

func (r *repository) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return r.list(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE customer_email = $1 ORDER BY id", email)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY id")
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) MarkPaid(ctx context.Context, tranID string, valID *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET paid_status = true, paid_at = now(), val_id = COALESCE($2, val_id)
		WHERE transaction_id = $1 AND paid_status = false`,
		tranID, valID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) DeleteUnpaid(ctx context.Context, tranID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM orders WHERE transaction_id = $1 AND paid_status = false", tranID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
