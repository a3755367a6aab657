package sqlite

import (
	"context"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
)

type clientsRepo struct {
	q querier
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, secret_hash, grant_types, scopes, created_at, updated_at
		FROM clients
		WHERE id = ?`, id)

	var c domain.Client
	var grantTypes, scopes string
	if err := row.Scan(&c.ID, &c.Name, &c.SecretHash, &grantTypes, &scopes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.GrantTypes = splitList(grantTypes)
	c.Scopes = splitList(scopes)
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, secret_hash, grant_types, scopes, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		var grantTypes, scopes string
		if err := rows.Scan(&c.ID, &c.Name, &c.SecretHash, &grantTypes, &scopes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.GrantTypes = splitList(grantTypes)
		c.Scopes = splitList(scopes)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (id, name, secret_hash, grant_types, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.SecretHash, joinList(c.GrantTypes), joinList(c.Scopes), now, now)
	return err
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
