package payment

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const reconcileBatch = 50

// Reconcile re-verifies checkouts that have been initiated for longer than
// olderThan, so payments whose customer never came back to the redirect page
// still move to paid or cancelled. Every checkout looked at is stamped as
// checked so the next round starts with ones it has not seen. It returns how
// many changed status.
func (s *Service) Reconcile(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.repo.ListInitiatedBefore(ctx, s.now().Add(-olderThan), reconcileBatch)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, tx := range stale {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		out, err := s.Verify(ctx, tx.Reference)
		if merr := s.repo.MarkChecked(ctx, tx.ID, s.now()); merr != nil {
			s.log.Warn("mark transaction checked", zap.String("reference", tx.Reference), zap.Error(merr))
		}
		if err != nil {
			s.log.Warn("reconcile transaction", zap.String("reference", tx.Reference), zap.Error(err))
			continue
		}
		if out.Status != StatusInitiated {
			changed++
		}
	}
	return changed, nil
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (s *Service) RunReconciler(ctx context.Context, every, olderThan time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Reconcile(ctx, olderThan)
			if err != nil {
				s.log.Error("reconcile payments", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("payments reconciled", zap.Int("changed", n))
			}
		}
	}
}
