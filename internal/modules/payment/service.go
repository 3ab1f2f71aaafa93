// README: Escrow service; every step is a guarded status transition.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"yourhelpa/internal/logger"
	"yourhelpa/internal/metrics"
	"yourhelpa/internal/monnify"
	"yourhelpa/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("transaction not found")
	ErrConflict     = errors.New("transaction state conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("forbidden")
	ErrGateway      = errors.New("payment gateway error")
)

// Gateway is the slice of the Monnify client the escrow flow uses.
type Gateway interface {
	InitTransaction(ctx context.Context, req monnify.InitRequest) (*monnify.Checkout, error)
	GetTransaction(ctx context.Context, transactionRef string) (*monnify.Transaction, error)
}

type Service struct {
	repo    Repository
	gateway Gateway
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, gateway Gateway, log *zap.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, log: logger.OrNop(log), now: time.Now}
}

type InitiateCommand struct {
	BookingID     string
	CustomerID    string
	HelpaID       string
	Amount        types.Money
	CustomerName  string
	CustomerEmail string
	Description   string
}

// ActorCommand identifies the caller of a transition on an existing
// transaction.
type ActorCommand struct {
	Reference string
	ActorID   string
	ActorRole string
}

func (c ActorCommand) isAdmin() bool {
	return c.ActorRole == "admin"
}

// Initiate records a new escrow transaction and opens a Monnify checkout for
// it. A gateway failure cancels the transaction.
func (s *Service) Initiate(ctx context.Context, cmd InitiateCommand) (*Transaction, error) {
	cmd.BookingID = strings.TrimSpace(cmd.BookingID)
	cmd.CustomerEmail = strings.TrimSpace(cmd.CustomerEmail)
	if cmd.BookingID == "" || cmd.CustomerID == "" || cmd.HelpaID == "" || cmd.CustomerEmail == "" {
		return nil, ErrBadRequest
	}
	if !cmd.Amount.IsPositive() {
		return nil, ErrBadRequest
	}
	if cmd.Amount.Currency == "" {
		cmd.Amount.Currency = types.CurrencyNGN
	}
	if cmd.Amount.Currency != types.CurrencyNGN {
		return nil, ErrBadRequest
	}

	now := s.now()
	tx := &Transaction{
		ID:         types.NewID(),
		BookingID:  cmd.BookingID,
		CustomerID: cmd.CustomerID,
		HelpaID:    cmd.HelpaID,
		Reference:  NewReference(cmd.BookingID, now),
		Amount:     cmd.Amount,
		Status:     StatusInitiated,
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, tx.ID, StatusNone, StatusInitiated, "customer", cmd.CustomerID)

	desc := cmd.Description
	if desc == "" {
		desc = "YourHelpa booking " + cmd.BookingID
	}
	checkout, err := s.gateway.InitTransaction(ctx, monnify.InitRequest{
		Amount:      cmd.Amount.Major(),
		Reference:   tx.Reference,
		Description: desc,
		Name:        cmd.CustomerName,
		Email:       cmd.CustomerEmail,
		Metadata:    map[string]string{"booking_id": cmd.BookingID, "helpa_id": cmd.HelpaID},
	})
	if err != nil {
		s.log.Warn("init transaction failed", zap.String("reference", tx.Reference), zap.Error(err))
		if terr := s.transition(ctx, tx, StatusCancelled, "system", ""); terr != nil {
			s.log.Error("cancel after gateway failure", zap.String("reference", tx.Reference), zap.Error(terr))
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	tx.CheckoutURL = checkout.CheckoutURL
	tx.GatewayRef = checkout.TransactionReference
	if err := s.repo.SetCheckout(ctx, tx.ID, tx.CheckoutURL, tx.GatewayRef); err != nil {
		return nil, err
	}
	s.log.Info("escrow initiated",
		zap.String("reference", tx.Reference),
		zap.String("booking_id", tx.BookingID),
		zap.Stringer("amount", tx.Amount))
	return tx, nil
}

func (s *Service) Get(ctx context.Context, ref string) (*Transaction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrBadRequest
	}
	return s.repo.GetByReference(ctx, ref)
}

// Verify asks Monnify for the payment status. A paid checkout moves the
// transaction to paid; a dead one (failed, expired, cancelled) cancels it.
// Transactions already past initiated are returned unchanged.
func (s *Service) Verify(ctx context.Context, ref string) (*Transaction, error) {
	tx, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	switch tx.Status {
	case StatusInitiated:
	case StatusCancelled:
		return nil, ErrInvalidState
	default:
		return tx, nil
	}

	gatewayRef := tx.GatewayRef
	if gatewayRef == "" {
		gatewayRef = tx.Reference
	}
	status, err := s.gateway.GetTransaction(ctx, gatewayRef)
	if err != nil {
		s.log.Warn("verify transaction failed", zap.String("reference", tx.Reference), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	switch {
	case status.IsPaid():
		err = s.transition(ctx, tx, StatusPaid, "gateway", "")
	case status.PaymentStatus == monnify.StatusFailed,
		status.PaymentStatus == monnify.StatusExpired,
		status.PaymentStatus == monnify.StatusCancelled:
		err = s.transition(ctx, tx, StatusCancelled, "gateway", "")
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Release pays the held funds out to the Helpa once the customer confirms
// the job is done.
func (s *Service) Release(ctx context.Context, cmd ActorCommand) (*Transaction, error) {
	tx, err := s.Get(ctx, cmd.Reference)
	if err != nil {
		return nil, err
	}
	if cmd.ActorID == "" || cmd.ActorID != tx.CustomerID {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, tx, StatusReleased, "customer", cmd.ActorID); err != nil {
		return nil, err
	}
	return tx, nil
}

// Cancel abandons a checkout that was never paid.
func (s *Service) Cancel(ctx context.Context, cmd ActorCommand) (*Transaction, error) {
	tx, err := s.Get(ctx, cmd.Reference)
	if err != nil {
		return nil, err
	}
	if cmd.ActorID != tx.CustomerID && !cmd.isAdmin() {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, tx, StatusCancelled, actorType(cmd), cmd.ActorID); err != nil {
		return nil, err
	}
	return tx, nil
}

// Refund returns held funds to the customer. Only admins may refund.
func (s *Service) Refund(ctx context.Context, cmd ActorCommand) (*Transaction, error) {
	tx, err := s.Get(ctx, cmd.Reference)
	if err != nil {
		return nil, err
	}
	if !cmd.isAdmin() {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, tx, StatusRefunded, "admin", cmd.ActorID); err != nil {
		return nil, err
	}
	return tx, nil
}

func actorType(cmd ActorCommand) string {
	if cmd.isAdmin() {
		return "admin"
	}
	return "customer"
}

// transition applies one guarded status change and updates tx in place.
func (s *Service) transition(ctx context.Context, tx *Transaction, to Status, actor, actorID string) error {
	from := tx.Status
	if !CanTransition(from, to) {
		return ErrInvalidState
	}
	ok, err := s.repo.UpdateStatus(ctx, tx.ID, from, to, tx.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	now := s.now()
	tx.Status = to
	tx.StatusVersion++
	switch to {
	case StatusPaid:
		tx.PaidAt = &now
	case StatusReleased:
		tx.ReleasedAt = &now
	}
	metrics.PaymentTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	s.recordEvent(ctx, tx.ID, from, to, actor, actorID)
	return nil
}

func (s *Service) recordEvent(ctx context.Context, id types.ID, from, to Status, actor, actorID string) {
	e := &Event{TransactionID: id, FromStatus: from, ToStatus: to, ActorType: actor, CreatedAt: s.now()}
	if actorID != "" {
		e.ActorID = &actorID
	}
	if err := s.repo.AppendEvent(ctx, e); err != nil {
		s.log.Warn("append payment event", zap.String("transaction_id", id.String()), zap.Error(err))
	}
}
