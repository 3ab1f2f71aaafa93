// README: Booking requests recorded on the bookings sheet.
package booking

import (
	"errors"
	"time"
)

var ErrBadRequest = errors.New("bad request")

type Booking struct {
	ID            string
	ProviderID    string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Service       string
	ScheduledFor  *time.Time
	Notes         string
	Channel       string
	CreatedAt     time.Time
}

type CreateCommand struct {
	ProviderID    string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Service       string
	ScheduledFor  *time.Time
	Notes         string
	// Channel records where the booking came from: whatsapp, web or api.
	Channel string
}
