package service

import (
	"context"
	"testing"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/stretchr/testify/require"
)

func TestCreateClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &ClientService{Store: st}

	t.Run("creates a client and returns the secret once", func(t *testing.T) {
		client, secret, err := svc.CreateClient(ctx, NewClient{
			Name:       "billing-service",
			GrantTypes: []string{domain.GrantTypeClientCredentials},
			Scopes:     []string{"invoices:read"},
		})
		require.NoError(t, err)
		require.Len(t, secret, 32)
		require.NotEmpty(t, client.ID)
		require.NotEqual(t, secret, client.SecretHash)

		stored, err := st.Clients().GetClientByID(ctx, client.ID)
		require.NoError(t, err)
		require.Equal(t, client.Name, stored.Name)
		require.Equal(t, client.GrantTypes, stored.GrantTypes)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, _, err := svc.CreateClient(ctx, NewClient{
			GrantTypes: []string{domain.GrantTypeClientCredentials},
		})
		require.ErrorIs(t, err, ErrInvalidClientName)
	})

	t.Run("rejects registration without grant types", func(t *testing.T) {
		_, _, err := svc.CreateClient(ctx, NewClient{Name: "no-grants"})
		require.ErrorIs(t, err, ErrNoGrantTypesListed)
	})

	t.Run("rejects unknown grant types", func(t *testing.T) {
		_, _, err := svc.CreateClient(ctx, NewClient{
			Name:       "bad-grants",
			GrantTypes: []string{"implicit"},
		})
		require.ErrorIs(t, err, ErrUnknownGrantType)
	})
}

func TestDeleteClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &ClientService{Store: st}

	client, _, err := svc.CreateClient(ctx, NewClient{
		Name:       "short-lived",
		GrantTypes: []string{domain.GrantTypeClientCredentials},
		Scopes:     []string{"profile:read"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClient(ctx, client.ID))
	require.ErrorIs(t, svc.DeleteClient(ctx, client.ID), ErrClientNotFound)
}

func TestGrantTypeToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &GrantTypeService{Store: st}

	t.Run("lists the seeded grant types", func(t *testing.T) {
		gts, err := svc.ListGrantTypes(ctx)
		require.NoError(t, err)
		require.Len(t, gts, 3)
		for _, gt := range gts {
			require.True(t, gt.Enabled)
		}
	})

	t.Run("toggles a grant type off and back on", func(t *testing.T) {
		require.NoError(t, svc.SetGrantTypeEnabled(ctx, domain.GrantTypeRefreshToken, false))

		gt, err := st.GrantTypes().GetGrantTypeByName(ctx, domain.GrantTypeRefreshToken)
		require.NoError(t, err)
		require.False(t, gt.Enabled)

		require.NoError(t, svc.SetGrantTypeEnabled(ctx, domain.GrantTypeRefreshToken, true))
	})

	t.Run("unknown grant type is reported", func(t *testing.T) {
		err := svc.SetGrantTypeEnabled(ctx, "device_code", true)
		require.ErrorIs(t, err, ErrGrantTypeNotFound)
	})
}
