package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
)

type authorizationCodesRepo struct {
	q querier
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO authorization_codes (id, client_id, code_hash, redirect_uri, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		code.ID, code.ClientID, code.CodeHash, code.RedirectURI, joinList(code.Scopes), code.ExpiresAt, time.Now().UTC())
	return err
}

// FindAndConsumeAuthorizationCode claims the code with a conditional UPDATE
// before reading it back. The rows-affected check is what makes redemption
// single-use under concurrency: the database serializes the writes, so only
// one caller observes used_at transitioning from NULL.
func (r *authorizationCodesRepo) FindAndConsumeAuthorizationCode(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.AuthorizationCode, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE authorization_codes
		SET used_at = ?
		WHERE code_hash = ? AND used_at IS NULL AND expires_at > ?`,
		now.UTC(), hash, now.UTC())
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	if n == 0 {
		return domain.AuthorizationCode{}, store.ErrNotFound
	}

	row := r.q.QueryRowContext(ctx, `
		SELECT id, client_id, code_hash, redirect_uri, scopes, expires_at, used_at, created_at
		FROM authorization_codes
		WHERE code_hash = ?`, hash)

	var code domain.AuthorizationCode
	var scopes string
	var usedAt sql.NullTime
	if err := row.Scan(&code.ID, &code.ClientID, &code.CodeHash, &code.RedirectURI, &scopes, &code.ExpiresAt, &usedAt, &code.CreatedAt); err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	code.Scopes = splitList(scopes)
	if usedAt.Valid {
		t := usedAt.Time
		code.UsedAt = &t
	}
	return code, nil
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM authorization_codes WHERE expires_at < ? OR used_at IS NOT NULL`, time.Now().UTC())
	return err
}
