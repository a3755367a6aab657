package store

import (
	"context"
	"errors"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the datastore gateway. Concrete drivers implement it. It exposes
// sub-repositories so the service layer depends on lookup contracts, not on
// SQL. Not-found is reported as ErrNotFound, never as a driver error;
// anything else is genuine infrastructure failure.
type Store interface {
	Clients() Clients
	GrantTypes() GrantTypes
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens
	AuthorizationCodes() AuthorizationCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Every grant
	// decision runs its validation reads and token writes through this so
	// a concurrently revoked grant cannot mint a token and a failed grant
	// leaves no orphaned rows.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// GetClientByID fetches a client for credential verification.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is a ULID).
	CreateClient(ctx context.Context, c domain.Client) error

	// DeleteClient cascades to this client's tokens and codes (per schema).
	DeleteClient(ctx context.Context, clientID string) error
}

type GrantTypes interface {
	// GetGrantTypeByName fetches a grant type record by its protocol name.
	GetGrantTypeByName(ctx context.Context, name string) (domain.GrantType, error)

	// ListGrantTypes returns all grant types ordered by name.
	ListGrantTypes(ctx context.Context) ([]domain.GrantType, error)

	// SetGrantTypeEnabled flips the enabled flag for a grant type.
	SetGrantTypeEnabled(ctx context.Context, name string, enabled bool) error
}

type AccessTokens interface {
	// InsertAccessToken stores a new access token record.
	InsertAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetAccessTokenByHash resolves an opaque token value by its fingerprint.
	GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error)

	// DeleteExpiredAccessTokens is housekeeping.
	DeleteExpiredAccessTokens(ctx context.Context) error
}

type RefreshTokens interface {
	// InsertRefreshToken stores a new refresh token record.
	InsertRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens removes expired and revoked rows.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted code. Called by the
	// front-channel authorization collaborator, not by grant processors.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// FindAndConsumeAuthorizationCode atomically claims an unused,
	// unexpired code by its fingerprint and returns the claimed record.
	// Exactly one concurrent caller can win the claim; all others get
	// ErrNotFound.
	FindAndConsumeAuthorizationCode(ctx context.Context, hash string, now time.Time) (domain.AuthorizationCode, error)

	// DeleteExpiredAuthorizationCodes removes codes that are no longer valid.
	DeleteExpiredAuthorizationCodes(ctx context.Context) error
}
