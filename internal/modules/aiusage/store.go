package aiusage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Consume(ctx context.Context, sessionID, month string, allowance int) (int, error)
	Get(ctx context.Context, sessionID string) (*Usage, error)
}

// Store keeps allowances in the ai_usage table.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Consume takes one reply from the session's allowance in a single statement.
// A missing row starts at allowance, and a row from an earlier month is
// refilled before the deduction. It returns what is left.
func (s *Store) Consume(ctx context.Context, sessionID, month string, allowance int) (int, error) {
	var left int
	err := s.db.QueryRow(ctx, `
		INSERT INTO ai_usage (session_id, replies_left, month, updated_at)
		VALUES ($1, $3 - 1, $2, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			replies_left = CASE
				WHEN ai_usage.month <> EXCLUDED.month THEN $3 - 1
				ELSE ai_usage.replies_left - 1
			END,
			month = EXCLUDED.month,
			updated_at = NOW()
		WHERE ai_usage.month <> EXCLUDED.month OR ai_usage.replies_left > 0
		RETURNING replies_left`,
		sessionID, month, allowance,
	).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrQuotaExhausted
	}
	if err != nil {
		return 0, err
	}
	return left, nil
}

// Get returns nil when the session never used the AI fallback.
func (s *Store) Get(ctx context.Context, sessionID string) (*Usage, error) {
	u := Usage{SessionID: sessionID}
	err := s.db.QueryRow(ctx, `
		SELECT replies_left, month FROM ai_usage WHERE session_id = $1`, sessionID,
	).Scan(&u.Remaining, &u.Month)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
