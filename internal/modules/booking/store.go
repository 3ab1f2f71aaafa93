// README: Booking store backed by the Apps Script spreadsheet endpoint.
package booking

import (
	"context"
	"errors"
	"strconv"
	"time"

	"yourhelpa/internal/infra"
)

type Store interface {
	Create(ctx context.Context, b *Booking) (string, error)
}

type ScriptStore struct {
	script *infra.AppScript
}

func NewScriptStore(script *infra.AppScript) *ScriptStore {
	return &ScriptStore{script: script}
}

type createRequest struct {
	Action        string `json:"action"`
	ProviderID    string `json:"providerId"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	Service       string `json:"service,omitempty"`
	Date          string `json:"date,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Channel       string `json:"channel,omitempty"`
}

type createResponse struct {
	BookingID any `json:"bookingId"`
}

func (s *ScriptStore) Create(ctx context.Context, b *Booking) (string, error) {
	req := createRequest{
		Action:        "createBooking",
		ProviderID:    b.ProviderID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerEmail: b.CustomerEmail,
		Service:       b.Service,
		Notes:         b.Notes,
		Channel:       b.Channel,
	}
	if b.ScheduledFor != nil {
		req.Date = b.ScheduledFor.Format(time.RFC3339)
	}
	var out createResponse
	if err := s.script.Post(ctx, "createBooking", req, &out); err != nil {
		return "", err
	}
	switch id := out.BookingID.(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return formatRow(id), nil
	}
	return "", errors.New("apps script createBooking: missing bookingId")
}

// formatRow renders a numeric sheet row id.
func formatRow(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}
