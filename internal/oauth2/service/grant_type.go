package service

import (
	"context"
	"errors"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
)

var ErrGrantTypeNotFound = errors.New("grant type not found")

// GrantTypeService exposes the global grant-type switches. Disabling a
// grant type turns its processor off for every client; the rows themselves
// are seeded by migration and never created at runtime.
type GrantTypeService struct {
	Store store.Store
}

func (s *GrantTypeService) ListGrantTypes(ctx context.Context) ([]domain.GrantType, error) {
	return s.Store.GrantTypes().ListGrantTypes(ctx)
}

func (s *GrantTypeService) SetGrantTypeEnabled(ctx context.Context, name string, enabled bool) error {
	if err := s.Store.GrantTypes().SetGrantTypeEnabled(ctx, name, enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGrantTypeNotFound
		}
		return err
	}
	return nil
}
