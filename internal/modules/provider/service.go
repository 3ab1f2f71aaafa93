// README: Provider service; lookups and Helpa registration over the store.
package provider

import (
	"context"
	"strings"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) All(ctx context.Context) ([]Provider, error) {
	return s.store.All(ctx)
}

// Search returns providers in category. An empty category lists everyone.
func (s *Service) Search(ctx context.Context, category string) ([]Provider, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return s.store.All(ctx)
	}
	return s.store.Search(ctx, category)
}

func (s *Service) Get(ctx context.Context, id string) (*Provider, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.store.Get(ctx, id)
}

// Register submits a new Helpa for review and returns the sheet row id.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (string, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Phone = normalizePhone(cmd.Phone)
	cmd.Category = strings.ToLower(strings.TrimSpace(cmd.Category))
	if cmd.Name == "" || cmd.Phone == "" || cmd.Category == "" {
		return "", ErrBadRequest
	}
	return s.store.Register(ctx, cmd)
}

// normalizePhone turns local Nigerian numbers (0803...) into +234 form.
func normalizePhone(p string) string {
	p = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(p))
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "234"):
		return "+" + p
	case strings.HasPrefix(p, "0") && len(p) == 11:
		return "+234" + p[1:]
	default:
		return p
	}
}
