package payment

import (
	"context"
	"database/sql"
	"errors"
)

// Repository journals gateway callbacks so repeated deliveries are detected.
type Repository interface {
	SaveEvent(ctx context.Context, e Event) (eventID int64, isDuplicate bool, err error)
	MarkEventProcessed(ctx context.Context, eventID int64) error
	MarkEventFailed(ctx context.Context, eventID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveEvent(ctx context.Context, e Event) (int64, bool, error) {
	const q = `
	INSERT INTO payment_events (
		provider,
		event_id,
		event_type,
		transaction_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO NOTHING
	RETURNING id;
	`

	payload := e.Payload
	if payload == nil {
		payload = []byte(`{}`)
	}

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		e.Provider,
		e.EventID,
		e.EventType,
		e.TransactionID,
		e.SignatureValid,
		[]byte(payload),
	).Scan(&id)

	if err != nil {
		// ON CONFLICT DO NOTHING returns no row for a repeated event
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkEventProcessed(ctx context.Context, eventID int64) error {
	const q = `
	UPDATE payment_events
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, eventID)
	return err
}

func (r *repository) MarkEventFailed(ctx context.Context, eventID int64, reason string) error {
	const q = `
	UPDATE payment_events
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, eventID, reason)
	return err
}
