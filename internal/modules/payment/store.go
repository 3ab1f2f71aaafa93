// README: Transaction store backed by the Supabase Postgres database.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yourhelpa/internal/types"
)

// Repository is the persistence contract the escrow service needs.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByReference(ctx context.Context, ref string) (*Transaction, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	SetCheckout(ctx context.Context, id types.ID, checkoutURL, gatewayRef string) error
	AppendEvent(ctx context.Context, e *Event) error
	ListInitiatedBefore(ctx context.Context, before time.Time, limit int) ([]Transaction, error)
	MarkChecked(ctx context.Context, id types.ID, at time.Time) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, tx *Transaction) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO transactions (
			id, booking_id, customer_id, helpa_id, reference,
			amount, currency, status, status_version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $10
		)`,
		string(tx.ID),
		tx.BookingID,
		tx.CustomerID,
		tx.HelpaID,
		tx.Reference,
		tx.Amount.Amount,
		tx.Amount.Currency,
		string(tx.Status),
		tx.StatusVersion,
		tx.CreatedAt,
	)
	return err
}

func (s *Store) GetByReference(ctx context.Context, ref string) (*Transaction, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, booking_id, customer_id, helpa_id, reference,
		       amount, currency, status, status_version, checkout_url, gateway_ref,
		       created_at, paid_at, released_at, last_checked_at
		FROM transactions
		WHERE reference = $1`, ref,
	)

	var tx Transaction
	var id, status string
	err := row.Scan(
		&id, &tx.BookingID, &tx.CustomerID, &tx.HelpaID, &tx.Reference,
		&tx.Amount.Amount, &tx.Amount.Currency, &status, &tx.StatusVersion, &tx.CheckoutURL, &tx.GatewayRef,
		&tx.CreatedAt, &tx.PaidAt, &tx.ReleasedAt, &tx.LastCheckedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tx.ID = types.ID(id)
	tx.Status = Status(status)
	return &tx, nil
}

// UpdateStatus moves a transaction from one status to another only if
// nobody else changed it since version was read.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE transactions
		SET status = $1,
			status_version = status_version + 1,
			updated_at = NOW(),
			paid_at = CASE WHEN $1 = 'paid' THEN NOW() ELSE paid_at END,
			released_at = CASE WHEN $1 = 'released' THEN NOW() ELSE released_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to),
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SetCheckout(ctx context.Context, id types.ID, checkoutURL, gatewayRef string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE transactions
		SET checkout_url = $1, gateway_ref = $2, updated_at = NOW()
		WHERE id = $3`,
		checkoutURL, gatewayRef, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO payment_events (
			transaction_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.TransactionID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		e.ActorID,
		e.CreatedAt,
	)
	return err
}

// ListInitiatedBefore returns checkouts still waiting for payment, never
// checked ones first and then the least recently checked, so a full batch of
// abandoned checkouts cannot starve newer ones.
func (s *Store) ListInitiatedBefore(ctx context.Context, before time.Time, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, customer_id, helpa_id, reference,
		       amount, currency, status, status_version, checkout_url, gateway_ref,
		       created_at, paid_at, released_at, last_checked_at
		FROM transactions
		WHERE status = 'initiated' AND created_at < $1
		ORDER BY last_checked_at NULLS FIRST, created_at
		LIMIT $2`, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		var id, status string
		if err := rows.Scan(
			&id, &tx.BookingID, &tx.CustomerID, &tx.HelpaID, &tx.Reference,
			&tx.Amount.Amount, &tx.Amount.Currency, &status, &tx.StatusVersion, &tx.CheckoutURL, &tx.GatewayRef,
			&tx.CreatedAt, &tx.PaidAt, &tx.ReleasedAt, &tx.LastCheckedAt,
		); err != nil {
			return nil, err
		}
		tx.ID = types.ID(id)
		tx.Status = Status(status)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) MarkChecked(ctx context.Context, id types.ID, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE transactions SET last_checked_at = $1 WHERE id = $2`,
		at, string(id),
	)
	return err
}
