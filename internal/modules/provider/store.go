// README: Provider store backed by the Apps Script spreadsheet endpoint.
package provider

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"yourhelpa/internal/infra"
)

// Store is the read/write surface the service needs.
type Store interface {
	All(ctx context.Context) ([]Provider, error)
	Get(ctx context.Context, id string) (*Provider, error)
	Search(ctx context.Context, category string) ([]Provider, error)
	Register(ctx context.Context, cmd RegisterCommand) (string, error)
}

type ScriptStore struct {
	script *infra.AppScript
}

func NewScriptStore(script *infra.AppScript) *ScriptStore {
	return &ScriptStore{script: script}
}

type listResponse struct {
	Providers []Provider `json:"providers"`
}

type getResponse struct {
	Provider *Provider `json:"provider"`
}

type registerRequest struct {
	Action      string   `json:"action"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email,omitempty"`
	Category    string   `json:"category"`
	Location    string   `json:"location,omitempty"`
	Price       string   `json:"price,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Bio         string   `json:"bio,omitempty"`
}

type registerResponse struct {
	ProviderID Text `json:"providerId"`
}

func (s *ScriptStore) All(ctx context.Context) ([]Provider, error) {
	var out listResponse
	if err := s.script.Get(ctx, "getProviders", nil, &out); err != nil {
		return nil, err
	}
	return out.Providers, nil
}

func (s *ScriptStore) Get(ctx context.Context, id string) (*Provider, error) {
	var out getResponse
	err := s.script.Get(ctx, "getProvider", url.Values{"id": {id}}, &out)
	if err != nil {
		if errors.Is(err, infra.ErrScriptFailed) && strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if out.Provider == nil {
		return nil, ErrNotFound
	}
	return out.Provider, nil
}

func (s *ScriptStore) Search(ctx context.Context, category string) ([]Provider, error) {
	var out listResponse
	if err := s.script.Get(ctx, "searchProviders", url.Values{"category": {category}}, &out); err != nil {
		return nil, err
	}
	return out.Providers, nil
}

func (s *ScriptStore) Register(ctx context.Context, cmd RegisterCommand) (string, error) {
	var out registerResponse
	err := s.script.Post(ctx, "registerProvider", registerRequest{
		Action:      "registerProvider",
		Name:        cmd.Name,
		Phone:       cmd.Phone,
		Email:       cmd.Email,
		Category:    cmd.Category,
		Location:    cmd.Location,
		Price:       cmd.Price,
		Specialties: cmd.Specialties,
		Bio:         cmd.Bio,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ProviderID.String(), nil
}
