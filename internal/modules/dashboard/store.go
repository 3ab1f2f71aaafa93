package dashboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/types"
)

// Reader loads the pieces of an overview. Each call is independent so they
// can run in parallel.
type Reader interface {
	Profile(ctx context.Context, uid string) (*Profile, error)
	Transactions(ctx context.Context, uid string, limit int) ([]payment.Transaction, error)
	Listings(ctx context.Context, uid string) ([]Listing, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Profile(ctx context.Context, uid string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx, `
		SELECT id, full_name, email, phone, role, created_at
		FROM profiles
		WHERE id = $1`, uid,
	).Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Transactions returns payments the user made and payments to Helpas the
// user owns, newest first.
func (s *Store) Transactions(ctx context.Context, uid string, limit int) ([]payment.Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, customer_id, helpa_id, reference,
		       amount, currency, status, checkout_url, created_at, paid_at, released_at
		FROM transactions
		WHERE customer_id = $1
		   OR helpa_id IN (SELECT id FROM helpas WHERE user_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, uid, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payment.Transaction{}
	for rows.Next() {
		var tx payment.Transaction
		var id, status string
		if err := rows.Scan(
			&id, &tx.BookingID, &tx.CustomerID, &tx.HelpaID, &tx.Reference,
			&tx.Amount.Amount, &tx.Amount.Currency, &status, &tx.CheckoutURL, &tx.CreatedAt, &tx.PaidAt, &tx.ReleasedAt,
		); err != nil {
			return nil, err
		}
		tx.ID = types.ID(id)
		tx.Status = payment.Status(status)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) Listings(ctx context.Context, uid string) ([]Listing, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.helpa_id, s.title, s.category, s.price, s.active
		FROM services s
		JOIN helpas h ON h.id = s.helpa_id
		WHERE h.user_id = $1
		ORDER BY s.created_at DESC`, uid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Listing{}
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.HelpaID, &l.Title, &l.Category, &l.Price.Amount, &l.Active); err != nil {
			return nil, err
		}
		l.Price.Currency = types.CurrencyNGN
		out = append(out, l)
	}
	return out, rows.Err()
}
