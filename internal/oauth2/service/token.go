package service

import (
	"context"
	"errors"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/pkg/cryptox"
	"github.com/keeradon/grantd/pkg/oauthx"
	"github.com/keeradon/grantd/pkg/slogx"
)

// TokenService implements the token endpoint contract: one processor per
// grant type, each a short-circuiting pipeline of field checks, client
// authentication, grant-type validation, grant-specific checks and token
// issuance. The first failing step terminates the request; no partial
// issuance can occur because every datastore read and write of a grant
// decision runs inside a single transaction.
//
// The service holds no mutable state between requests, so concurrent use
// is safe as long as the store provides transaction isolation.
type TokenService struct {
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Exchange routes a token request to the processor for its grant type.
// A missing grant_type is a malformed request; an unrecognized one is
// unsupported. There is no fallthrough: adding a grant type means adding
// a processor and a case here.
func (s *TokenService) Exchange(
	ctx context.Context,
	req oauthx.AccessTokenRequest,
) (*oauthx.AccessTokenResponse, error) {
	switch req.GrantType {
	case domain.GrantTypeAuthorizationCode:
		return s.ExchangeAuthorizationCode(ctx, req)
	case domain.GrantTypeClientCredentials:
		return s.ExchangeClientCredentials(ctx, req)
	case domain.GrantTypeRefreshToken:
		return s.ExchangeRefreshToken(ctx, req)
	case "":
		return nil, oauthx.ErrInvalidRequest
	default:
		return nil, oauthx.ErrUnsupportedGrantType
	}
}

// ExchangeClientCredentials implements the OAuth2 client_credentials grant.
//
// This is the only grant type that issues a refresh token on first use:
// the access token is bound to the full requested scope (checked against
// the client's registered allow-list, since there is no prior grant to
// narrow from) and a companion refresh token with the same scope is issued
// alongside it.
func (s *TokenService) ExchangeClientCredentials(
	ctx context.Context,
	req oauthx.AccessTokenRequest,
) (*oauthx.AccessTokenResponse, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	if req.ClientID == "" || req.ClientSecret == "" || req.Scope == "" {
		return nil, oauthx.ErrInvalidRequest
	}
	requested := oauthx.ParseScope(req.Scope)

	var resp *oauthx.AccessTokenResponse

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		client, err := checkClientCredentials(ctx, tx, req.ClientID, req.ClientSecret)
		if err != nil {
			if errors.Is(err, oauthx.ErrInvalidClient) {
				l.Info("client_credentials grant client authentication failed", "client_id", req.ClientID)
			}
			return err
		}

		if _, err := checkGrantType(ctx, tx, domain.GrantTypeClientCredentials); err != nil {
			return err
		}
		if err := checkClientGrantType(client, domain.GrantTypeClientCredentials); err != nil {
			return err
		}

		scopes, err := checkScope(requested, client.Scopes)
		if err != nil {
			return err
		}

		accessOpaque, access, err := generateAccessToken(
			ctx, tx, client, domain.GrantTypeClientCredentials, scopes, s.AccessTTL, now)
		if err != nil {
			return err
		}

		refreshOpaque, _, err := generateRefreshToken(ctx, tx, client, scopes, s.RefreshTTL, now)
		if err != nil {
			return err
		}

		resp = generateTokenResponse(accessOpaque, access, refreshOpaque)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// ExchangeRefreshToken implements the OAuth2 refresh_token grant.
//
// Client authentication is required: the caller must present the owning
// client's credentials, and the refresh token's bound client id must match
// the authenticated client. The requested scope must be a subset of (or
// equal to) the scope originally granted to the refresh token. The refresh
// token itself is not rotated; the response echoes it unchanged.
func (s *TokenService) ExchangeRefreshToken(
	ctx context.Context,
	req oauthx.AccessTokenRequest,
) (*oauthx.AccessTokenResponse, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	if req.ClientID == "" || req.ClientSecret == "" || req.RefreshToken == "" || req.Scope == "" {
		return nil, oauthx.ErrInvalidRequest
	}
	requested := oauthx.ParseScope(req.Scope)

	var resp *oauthx.AccessTokenResponse

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		client, err := checkClientCredentials(ctx, tx, req.ClientID, req.ClientSecret)
		if err != nil {
			if errors.Is(err, oauthx.ErrInvalidClient) {
				l.Info("refresh_token grant client authentication failed", "client_id", req.ClientID)
			}
			return err
		}

		if _, err := checkGrantType(ctx, tx, domain.GrantTypeRefreshToken); err != nil {
			return err
		}
		if err := checkClientGrantType(client, domain.GrantTypeRefreshToken); err != nil {
			return err
		}

		rt, err := checkRefreshToken(ctx, tx, req.RefreshToken, now)
		if err != nil {
			return err
		}

		// The token must belong to the client presenting it. Reported as
		// invalid_grant, not invalid_client: authentication itself succeeded.
		if rt.ClientID != client.ID {
			l.Warn("refresh token presented by foreign client", "client_id", client.ID)
			return oauthx.ErrInvalidGrant
		}

		scopes, err := checkScope(requested, rt.Scopes)
		if err != nil {
			return err
		}

		accessOpaque, access, err := generateAccessToken(
			ctx, tx, client, domain.GrantTypeRefreshToken, scopes, s.AccessTTL, now)
		if err != nil {
			return err
		}

		resp = generateTokenResponse(accessOpaque, access, req.RefreshToken)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// ExchangeAuthorizationCode implements the back-channel redemption of the
// OAuth2 authorization_code grant.
//
// The code is claimed atomically inside the transaction, so of N
// concurrent redemptions of the same code exactly one succeeds; a replayed
// code is invalid_grant. The stored redirect_uri must match the one
// supplied in the request exactly (both empty when none was bound).
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	req oauthx.AccessTokenRequest,
) (*oauthx.AccessTokenResponse, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	if req.ClientID == "" || req.ClientSecret == "" || req.Code == "" {
		return nil, oauthx.ErrInvalidRequest
	}

	var resp *oauthx.AccessTokenResponse

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		client, err := checkClientCredentials(ctx, tx, req.ClientID, req.ClientSecret)
		if err != nil {
			if errors.Is(err, oauthx.ErrInvalidClient) {
				l.Info("authorization_code grant client authentication failed", "client_id", req.ClientID)
			}
			return err
		}

		if _, err := checkGrantType(ctx, tx, domain.GrantTypeAuthorizationCode); err != nil {
			return err
		}
		if err := checkClientGrantType(client, domain.GrantTypeAuthorizationCode); err != nil {
			return err
		}

		code, err := tx.AuthorizationCodes().FindAndConsumeAuthorizationCode(
			ctx, cryptox.FingerprintToken(req.Code), now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return oauthx.ErrInvalidGrant
			}
			return err
		}

		if code.ClientID != client.ID {
			l.Warn("authorization code presented by foreign client", "client_id", client.ID)
			return oauthx.ErrInvalidGrant
		}
		if code.RedirectURI != req.RedirectURI {
			return oauthx.ErrInvalidGrant
		}

		accessOpaque, access, err := generateAccessToken(
			ctx, tx, client, domain.GrantTypeAuthorizationCode, code.Scopes, s.AccessTTL, now)
		if err != nil {
			return err
		}

		refreshOpaque, _, err := generateRefreshToken(ctx, tx, client, code.Scopes, s.RefreshTTL, now)
		if err != nil {
			return err
		}

		resp = generateTokenResponse(accessOpaque, access, refreshOpaque)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// RevokeRefreshToken revokes a refresh token on behalf of its owning
// client. Unknown tokens and tokens owned by another client are reported
// as success so the endpoint reveals nothing about token existence.
func (s *TokenService) RevokeRefreshToken(
	ctx context.Context,
	clientID, clientSecret, refreshOpaque string,
) error {
	client, err := checkClientCredentials(ctx, s.Store, clientID, clientSecret)
	if err != nil {
		return err
	}

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(
		ctx, cryptox.FingerprintToken(refreshOpaque))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if rt.ClientID != client.ID {
		return nil
	}

	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, rt.TokenHash)
}
