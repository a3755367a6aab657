package service

import (
	"testing"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/pkg/oauthx"
	"github.com/stretchr/testify/require"
)

func TestSubsetOf(t *testing.T) {
	t.Parallel()

	granted := []string{"profile:read", "orders:write"}

	require.True(t, subsetOf([]string{"profile:read"}, granted))
	require.True(t, subsetOf(granted, granted))
	require.True(t, subsetOf(nil, granted))
	require.False(t, subsetOf([]string{"admin:root"}, granted))
	require.False(t, subsetOf([]string{"profile:read", "admin:root"}, granted))
	require.False(t, subsetOf([]string{"profile:read"}, nil))
}

func TestCheckScope(t *testing.T) {
	t.Parallel()

	granted := []string{"profile:read", "orders:write"}

	t.Run("subset passes through unchanged", func(t *testing.T) {
		scopes, err := checkScope([]string{"profile:read"}, granted)
		require.NoError(t, err)
		require.Equal(t, []string{"profile:read"}, scopes)
	})

	t.Run("empty request is rejected", func(t *testing.T) {
		_, err := checkScope(nil, granted)
		require.ErrorIs(t, err, oauthx.ErrInvalidScope)
	})

	t.Run("escalation is rejected", func(t *testing.T) {
		_, err := checkScope([]string{"profile:read", "admin:root"}, granted)
		require.ErrorIs(t, err, oauthx.ErrInvalidScope)
	})
}

func TestCheckClientGrantType(t *testing.T) {
	t.Parallel()

	client := domain.Client{GrantTypes: []string{domain.GrantTypeClientCredentials}}

	require.NoError(t, checkClientGrantType(client, domain.GrantTypeClientCredentials))
	require.ErrorIs(t,
		checkClientGrantType(client, domain.GrantTypeRefreshToken),
		oauthx.ErrUnauthorizedClient)
}
