package service

import (
	"context"
	"errors"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/pkg/cryptox"
	"github.com/keeradon/grantd/pkg/idx"
)

var (
	ErrInvalidClientName  = errors.New("invalid client name")
	ErrUnknownGrantType   = errors.New("unknown grant type")
	ErrClientNotFound     = errors.New("client not found")
	ErrNoGrantTypesListed = errors.New("at least one grant type is required")
)

// ClientService manages client registration. The plaintext secret is
// generated server-side and surfaced exactly once; only its Argon2id hash
// is stored.
type ClientService struct {
	Store store.Store
}

// NewClient is the registration input.
type NewClient struct {
	Name       string
	GrantTypes []string
	Scopes     []string
}

// CreateClient registers a client and returns the record together with the
// one-time plaintext secret. Every requested grant type must exist in the
// grant_types table (it may be disabled; the allow-list and the global
// switch are independent).
func (s *ClientService) CreateClient(ctx context.Context, in NewClient) (domain.Client, string, error) {
	if in.Name == "" {
		return domain.Client{}, "", ErrInvalidClientName
	}
	if len(in.GrantTypes) == 0 {
		return domain.Client{}, "", ErrNoGrantTypesListed
	}

	for _, name := range in.GrantTypes {
		if _, err := s.Store.GrantTypes().GetGrantTypeByName(ctx, name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Client{}, "", ErrUnknownGrantType
			}
			return domain.Client{}, "", err
		}
	}

	secret, err := cryptox.GenerateSecret()
	if err != nil {
		return domain.Client{}, "", err
	}
	secretHash, err := cryptox.HashSecret(secret)
	if err != nil {
		return domain.Client{}, "", err
	}

	c := domain.Client{
		ID:         idx.New().String(),
		Name:       in.Name,
		SecretHash: secretHash,
		GrantTypes: in.GrantTypes,
		Scopes:     in.Scopes,
	}

	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		return domain.Client{}, "", err
	}

	return c, secret, nil
}

// ListClients returns all registered clients, newest first.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// DeleteClient removes a client; the schema cascades to its tokens and
// outstanding codes.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	if err := s.Store.Clients().DeleteClient(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return nil
}
