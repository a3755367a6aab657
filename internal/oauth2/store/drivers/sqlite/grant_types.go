package sqlite

import (
	"context"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
)

type grantTypesRepo struct {
	q querier
}

func (r *grantTypesRepo) GetGrantTypeByName(ctx context.Context, name string) (domain.GrantType, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT name, enabled, created_at, updated_at
		FROM grant_types
		WHERE name = ?`, name)

	var g domain.GrantType
	if err := row.Scan(&g.Name, &g.Enabled, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.GrantType{}, mapNotFound(err)
	}
	return g, nil
}

func (r *grantTypesRepo) ListGrantTypes(ctx context.Context) ([]domain.GrantType, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT name, enabled, created_at, updated_at
		FROM grant_types
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grantTypes []domain.GrantType
	for rows.Next() {
		var g domain.GrantType
		if err := rows.Scan(&g.Name, &g.Enabled, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		grantTypes = append(grantTypes, g)
	}
	return grantTypes, rows.Err()
}

func (r *grantTypesRepo) SetGrantTypeEnabled(ctx context.Context, name string, enabled bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE grant_types
		SET enabled = ?, updated_at = ?
		WHERE name = ?`, enabled, time.Now().UTC(), name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
