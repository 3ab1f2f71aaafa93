package aiusage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"yourhelpa/internal/logger"
)

type Service struct {
	repo      Repository
	allowance int
	log       *zap.Logger
	now       func() time.Time
}

// NewService grants allowance replies per session per month. A non-positive
// allowance means DefaultMonthlyReplies.
func NewService(repo Repository, allowance int, log *zap.Logger) *Service {
	if allowance <= 0 {
		allowance = DefaultMonthlyReplies
	}
	return &Service{repo: repo, allowance: allowance, log: logger.OrNop(log), now: time.Now}
}

// Consume spends one AI reply for sessionID. ErrQuotaExhausted means the
// session has used its allowance for the current month.
func (s *Service) Consume(ctx context.Context, sessionID string) error {
	left, err := s.repo.Consume(ctx, sessionID, monthOf(s.now()), s.allowance)
	if err != nil {
		return err
	}
	if left == 0 {
		s.log.Info("ai reply allowance used up", zap.String("session_id", sessionID))
	}
	return nil
}

// Remaining reports the replies left this month.
func (s *Service) Remaining(ctx context.Context, sessionID string) (int, error) {
	u, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if u == nil || u.Month != monthOf(s.now()) {
		return s.allowance, nil
	}
	return u.Remaining, nil
}
