// README: Booking service validates and records booking requests.
package booking

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create records a booking and returns the id assigned by the sheet.
// A provider and at least one customer contact are required.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	cmd.ProviderID = strings.TrimSpace(cmd.ProviderID)
	cmd.CustomerPhone = strings.TrimSpace(cmd.CustomerPhone)
	cmd.CustomerEmail = strings.TrimSpace(cmd.CustomerEmail)
	if cmd.ProviderID == "" || (cmd.CustomerPhone == "" && cmd.CustomerEmail == "") {
		return nil, ErrBadRequest
	}
	if cmd.ScheduledFor != nil && cmd.ScheduledFor.Before(s.now().Add(-time.Minute)) {
		return nil, ErrBadRequest
	}
	if cmd.Channel == "" {
		cmd.Channel = "api"
	}

	b := &Booking{
		ProviderID:    cmd.ProviderID,
		CustomerName:  strings.TrimSpace(cmd.CustomerName),
		CustomerPhone: cmd.CustomerPhone,
		CustomerEmail: cmd.CustomerEmail,
		Service:       strings.ToLower(strings.TrimSpace(cmd.Service)),
		ScheduledFor:  cmd.ScheduledFor,
		Notes:         strings.TrimSpace(cmd.Notes),
		Channel:       cmd.Channel,
		CreatedAt:     s.now(),
	}
	id, err := s.store.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return b, nil
}
