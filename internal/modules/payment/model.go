// README: Escrow transaction aggregate and status definitions.
package payment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"yourhelpa/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusInitiated Status = "initiated"
	StatusPaid      Status = "paid"
	StatusReleased  Status = "released"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

type Transaction struct {
	ID            types.ID    `json:"id"`
	BookingID     string      `json:"booking_id"`
	CustomerID    string      `json:"customer_id"`
	HelpaID       string      `json:"helpa_id"`
	Reference     string      `json:"reference"`
	Amount        types.Money `json:"amount"`
	Status        Status      `json:"status"`
	StatusVersion int         `json:"-"`
	CheckoutURL   string      `json:"checkout_url,omitempty"`
	GatewayRef    string      `json:"gateway_ref,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	PaidAt        *time.Time  `json:"paid_at,omitempty"`
	ReleasedAt    *time.Time  `json:"released_at,omitempty"`
	LastCheckedAt *time.Time  `json:"last_checked_at,omitempty"`
}

type Event struct {
	ID            int64
	TransactionID types.ID
	FromStatus    Status
	ToStatus      Status
	ActorType     string
	ActorID       *string
	CreatedAt     time.Time
}

// AllowedTransitions represents the escrow state flow (diagram) as code.
//
//	initiated ──paid──▶ paid ──release──▶ released
//	    │                 │
//	    └──cancel──▶ cancelled   └──refund──▶ refunded
var AllowedTransitions = map[Status][]Status{
	StatusNone:      {StatusInitiated},
	StatusInitiated: {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusReleased, StatusRefunded},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	_, ok := AllowedTransitions[s]
	return !ok
}

// NewReference builds a payment reference of the form
// YH-{bookingId}-{random6}-{unixMillis}.
func NewReference(bookingID string, now time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("YH-%s-%s-%d", bookingID, strings.ToUpper(hex.EncodeToString(b[:])), now.UnixMilli())
}
