package dashboard

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/types"
)

const recentTransactions = 50

type Service struct {
	reader Reader
}

func NewService(reader Reader) *Service {
	return &Service{reader: reader}
}

// Overview loads the profile, recent transactions and service listings of
// uid concurrently. The first failure cancels the rest.
func (s *Service) Overview(ctx context.Context, uid string) (*Overview, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, ErrNotFound
	}

	var (
		ov      Overview
		profile *Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.reader.Profile(gctx, uid)
		profile = p
		return err
	})
	g.Go(func() error {
		txs, err := s.reader.Transactions(gctx, uid, recentTransactions)
		ov.Transactions = txs
		return err
	})
	g.Go(func() error {
		ls, err := s.reader.Listings(gctx, uid)
		ov.Services = ls
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov.Profile = *profile
	ov.Stats = summarize(uid, ov.Transactions)
	return &ov, nil
}

func summarize(uid string, txs []payment.Transaction) Stats {
	st := Stats{
		TotalSpent: types.Money{Currency: types.CurrencyNGN},
		InEscrow:   types.Money{Currency: types.CurrencyNGN},
		Earned:     types.Money{Currency: types.CurrencyNGN},
	}
	for _, tx := range txs {
		mine := tx.CustomerID == uid
		switch tx.Status {
		case payment.StatusInitiated:
			if mine {
				st.OpenPayments++
			}
		case payment.StatusPaid:
			st.InEscrow.Amount += tx.Amount.Amount
			if mine {
				st.TotalSpent.Amount += tx.Amount.Amount
			}
		case payment.StatusReleased:
			st.Completed++
			if mine {
				st.TotalSpent.Amount += tx.Amount.Amount
			} else {
				st.Earned.Amount += tx.Amount.Amount
			}
		}
	}
	return st
}
