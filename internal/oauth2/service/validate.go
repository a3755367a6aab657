package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/pkg/cryptox"
	"github.com/keeradon/grantd/pkg/oauthx"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// checkClientCredentials authenticates a client by id and secret. An
// unknown client id and a wrong secret both return ErrInvalidClient, and a
// hash verification runs in both cases so the two are not separable by
// timing either.
func checkClientCredentials(
	ctx context.Context,
	st store.Store,
	clientID, clientSecret string,
) (domain.Client, error) {
	client, err := st.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			dummyHashOnce.Do(func() {
				dummyHash, _ = cryptox.HashSecret("grantd-unknown-client-filler")
			})
			_ = cryptox.VerifySecret(clientSecret, dummyHash)
			return domain.Client{}, oauthx.ErrInvalidClient
		}
		return domain.Client{}, err
	}

	if err := cryptox.VerifySecret(clientSecret, client.SecretHash); err != nil {
		return domain.Client{}, oauthx.ErrInvalidClient
	}

	return client, nil
}

// checkGrantType verifies that the named grant type exists and is enabled.
// Every processor re-derives its own grant type here instead of trusting
// the dispatcher's routing.
func checkGrantType(ctx context.Context, st store.Store, name string) (domain.GrantType, error) {
	gt, err := st.GrantTypes().GetGrantTypeByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.GrantType{}, oauthx.ErrUnsupportedGrantType
		}
		return domain.GrantType{}, err
	}
	if !gt.Enabled {
		return domain.GrantType{}, oauthx.ErrUnsupportedGrantType
	}
	return gt, nil
}

// checkClientGrantType verifies the client's per-client allow-list for the
// grant type. Distinct from checkGrantType: a globally enabled grant type
// can still be denied to an individual client.
func checkClientGrantType(client domain.Client, name string) error {
	if !client.AllowsGrantType(name) {
		return oauthx.ErrUnauthorizedClient
	}
	return nil
}

// checkScope verifies that requested is a non-empty subset of granted.
// Equal sets are allowed; an expansion never is.
func checkScope(requested, granted []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, oauthx.ErrInvalidScope
	}
	if !subsetOf(requested, granted) {
		return nil, oauthx.ErrInvalidScope
	}
	return requested, nil
}

// checkRefreshToken resolves an opaque refresh token by fingerprint and
// verifies it is neither revoked nor expired.
func checkRefreshToken(
	ctx context.Context,
	st store.Store,
	opaque string,
	now time.Time,
) (domain.RefreshToken, error) {
	rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(opaque))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RefreshToken{}, oauthx.ErrInvalidGrant
		}
		return domain.RefreshToken{}, err
	}
	if rt.Revoked || now.After(rt.ExpiresAt) {
		return domain.RefreshToken{}, oauthx.ErrInvalidGrant
	}
	return rt, nil
}
