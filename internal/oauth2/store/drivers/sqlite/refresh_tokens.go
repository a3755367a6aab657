package sqlite

import (
	"context"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
)

type refreshTokensRepo struct {
	q querier
}

func (r *refreshTokensRepo) InsertRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, client_id, token_hash, scopes, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, t.TokenHash, joinList(t.Scopes), t.ExpiresAt, t.Revoked, now, now)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, client_id, token_hash, scopes, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens
		WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	var scopes string
	if err := row.Scan(&t.ID, &t.ClientID, &t.TokenHash, &scopes, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.Scopes = splitList(scopes)
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1, updated_at = ?
		WHERE token_hash = ?`, time.Now().UTC(), hash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked = 1`, time.Now().UTC())
	return err
}
