package sqlite

import (
	"context"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
)

type accessTokensRepo struct {
	q querier
}

func (r *accessTokensRepo) InsertAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO access_tokens (id, client_id, grant_type, token_hash, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, t.GrantType, t.TokenHash, joinList(t.Scopes), t.ExpiresAt, time.Now().UTC())
	return err
}

func (r *accessTokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, client_id, grant_type, token_hash, scopes, expires_at, created_at
		FROM access_tokens
		WHERE token_hash = ?`, hash)

	var t domain.AccessToken
	var scopes string
	if err := row.Scan(&t.ID, &t.ClientID, &t.GrantType, &t.TokenHash, &scopes, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	t.Scopes = splitList(scopes)
	return t, nil
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM access_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
