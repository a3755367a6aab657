package service

import (
	"context"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/pkg/cryptox"
	"github.com/keeradon/grantd/pkg/idx"
	"github.com/keeradon/grantd/pkg/oauthx"
)

// generateAccessToken mints a fresh opaque access token bound to the
// client, grant type and scope, and persists its record through st. The
// opaque value is returned to the caller and never stored.
func generateAccessToken(
	ctx context.Context,
	st store.Store,
	client domain.Client,
	grantType string,
	scopes []string,
	ttl time.Duration,
	now time.Time,
) (string, domain.AccessToken, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.AccessToken{}, err
	}

	t := domain.AccessToken{
		ID:        idx.New().String(),
		ClientID:  client.ID,
		GrantType: grantType,
		TokenHash: cryptox.FingerprintToken(opaque),
		Scopes:    scopes,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := st.AccessTokens().InsertAccessToken(ctx, t); err != nil {
		return "", domain.AccessToken{}, err
	}

	return opaque, t, nil
}

// generateRefreshToken mints and persists a fresh opaque refresh token for
// the client with the given scope.
func generateRefreshToken(
	ctx context.Context,
	st store.Store,
	client domain.Client,
	scopes []string,
	ttl time.Duration,
	now time.Time,
) (string, domain.RefreshToken, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.RefreshToken{}, err
	}

	t := domain.RefreshToken{
		ID:        idx.New().String(),
		ClientID:  client.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		Scopes:    scopes,
		ExpiresAt: now.Add(ttl),
		Revoked:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := st.RefreshTokens().InsertRefreshToken(ctx, t); err != nil {
		return "", domain.RefreshToken{}, err
	}

	return opaque, t, nil
}

// generateTokenResponse assembles the wire response. Pure, no side
// effects; the refresh_token field is populated only when the caller
// supplies one.
func generateTokenResponse(
	accessOpaque string,
	access domain.AccessToken,
	refreshOpaque string,
) *oauthx.AccessTokenResponse {
	return &oauthx.AccessTokenResponse{
		AccessToken:  accessOpaque,
		TokenType:    oauthx.TokenTypeBearer,
		ExpiresIn:    int(access.ExpiresAt.Sub(access.CreatedAt).Seconds()),
		RefreshToken: refreshOpaque,
		Scope:        oauthx.JoinScope(access.Scopes),
	}
}
