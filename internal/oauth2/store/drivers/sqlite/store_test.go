package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		filepath.Join(t.TempDir(), "test.db"))
	st, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedClient(t *testing.T, st *Store) domain.Client {
	t.Helper()

	c := domain.Client{
		ID:         idx.New().String(),
		Name:       "store-test-app",
		SecretHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		GrantTypes: []string{domain.GrantTypeClientCredentials},
		Scopes:     []string{"profile:read"},
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), c))
	return c
}

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
}

func TestMigrationsSeedGrantTypes(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	gts, err := st.GrantTypes().ListGrantTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, gts, 3)

	names := make([]string, 0, len(gts))
	for _, gt := range gts {
		names = append(names, gt.Name)
		require.True(t, gt.Enabled)
	}
	require.Equal(t, []string{
		domain.GrantTypeAuthorizationCode,
		domain.GrantTypeClientCredentials,
		domain.GrantTypeRefreshToken,
	}, names)
}

func TestClientRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	c := seedClient(t, st)

	got, err := st.Clients().GetClientByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, got.Name)
	require.Equal(t, c.SecretHash, got.SecretHash)
	require.Equal(t, c.GrantTypes, got.GrantTypes)
	require.Equal(t, c.Scopes, got.Scopes)

	_, err = st.Clients().GetClientByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteClientCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	c := seedClient(t, st)

	require.NoError(t, st.AccessTokens().InsertAccessToken(ctx, domain.AccessToken{
		ID:        idx.New().String(),
		ClientID:  c.ID,
		GrantType: domain.GrantTypeClientCredentials,
		TokenHash: "at-hash",
		Scopes:    []string{"profile:read"},
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))
	require.NoError(t, st.RefreshTokens().InsertRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		ClientID:  c.ID,
		TokenHash: "rt-hash",
		Scopes:    []string{"profile:read"},
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	require.NoError(t, st.Clients().DeleteClient(ctx, c.ID))

	_, err := st.AccessTokens().GetAccessTokenByHash(ctx, "at-hash")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "rt-hash")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFindAndConsumeAuthorizationCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	c := seedClient(t, st)
	now := time.Now().UTC()

	require.NoError(t, st.AuthorizationCodes().CreateAuthorizationCode(ctx, domain.AuthorizationCode{
		ID:          idx.New().String(),
		ClientID:    c.ID,
		CodeHash:    "code-hash",
		RedirectURI: "https://app.example/cb",
		Scopes:      []string{"profile:read"},
		ExpiresAt:   now.Add(5 * time.Minute),
	}))

	t.Run("first claim wins and marks used_at", func(t *testing.T) {
		code, err := st.AuthorizationCodes().FindAndConsumeAuthorizationCode(ctx, "code-hash", now)
		require.NoError(t, err)
		require.Equal(t, c.ID, code.ClientID)
		require.Equal(t, "https://app.example/cb", code.RedirectURI)
		require.NotNil(t, code.UsedAt)
	})

	t.Run("second claim is not found", func(t *testing.T) {
		_, err := st.AuthorizationCodes().FindAndConsumeAuthorizationCode(ctx, "code-hash", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired codes cannot be claimed", func(t *testing.T) {
		require.NoError(t, st.AuthorizationCodes().CreateAuthorizationCode(ctx, domain.AuthorizationCode{
			ID:        idx.New().String(),
			ClientID:  c.ID,
			CodeHash:  "stale-hash",
			Scopes:    []string{"profile:read"},
			ExpiresAt: now.Add(-time.Minute),
		}))

		_, err := st.AuthorizationCodes().FindAndConsumeAuthorizationCode(ctx, "stale-hash", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestConcurrentConsumeTakesWriteLockUpFront(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	c := seedClient(t, st)
	now := time.Now().UTC()

	require.NoError(t, st.AuthorizationCodes().CreateAuthorizationCode(ctx, domain.AuthorizationCode{
		ID:        idx.New().String(),
		ClientID:  c.ID,
		CodeHash:  "contended-hash",
		Scopes:    []string{"profile:read"},
		ExpiresAt: now.Add(5 * time.Minute),
	}))

	// Each worker reads inside the transaction before consuming, the same
	// shape a grant decision has. Without an immediate write lock the
	// read-then-write upgrade makes the losers fail with SQLITE_BUSY
	// rather than observing used_at.
	const workers = 8
	start := make(chan struct{})
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- st.WithTx(ctx, func(tx store.Tx) error {
				if _, err := tx.Clients().GetClientByID(ctx, c.ID); err != nil {
					return err
				}
				_, err := tx.AuthorizationCodes().FindAndConsumeAuthorizationCode(ctx, "contended-hash", now)
				return err
			})
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, store.ErrNotFound):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, workers-1, lost)
}

func TestHousekeepingDeletes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	c := seedClient(t, st)
	now := time.Now().UTC()

	require.NoError(t, st.AccessTokens().InsertAccessToken(ctx, domain.AccessToken{
		ID: idx.New().String(), ClientID: c.ID, GrantType: domain.GrantTypeClientCredentials,
		TokenHash: "live-at", Scopes: []string{"profile:read"}, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, st.AccessTokens().InsertAccessToken(ctx, domain.AccessToken{
		ID: idx.New().String(), ClientID: c.ID, GrantType: domain.GrantTypeClientCredentials,
		TokenHash: "dead-at", Scopes: []string{"profile:read"}, ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, st.RefreshTokens().InsertRefreshToken(ctx, domain.RefreshToken{
		ID: idx.New().String(), ClientID: c.ID,
		TokenHash: "live-rt", Scopes: []string{"profile:read"}, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, st.RefreshTokens().InsertRefreshToken(ctx, domain.RefreshToken{
		ID: idx.New().String(), ClientID: c.ID,
		TokenHash: "revoked-rt", Scopes: []string{"profile:read"}, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, st.RefreshTokens().RevokeRefreshToken(ctx, "revoked-rt"))

	require.NoError(t, st.AccessTokens().DeleteExpiredAccessTokens(ctx))
	require.NoError(t, st.RefreshTokens().DeleteExpiredRefreshTokens(ctx))

	_, err := st.AccessTokens().GetAccessTokenByHash(ctx, "live-at")
	require.NoError(t, err)
	_, err = st.AccessTokens().GetAccessTokenByHash(ctx, "dead-at")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "live-rt")
	require.NoError(t, err)
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "revoked-rt")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	c := seedClient(t, st)

	wantErr := fmt.Errorf("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.AccessTokens().InsertAccessToken(ctx, domain.AccessToken{
			ID: idx.New().String(), ClientID: c.ID, GrantType: domain.GrantTypeClientCredentials,
			TokenHash: "rollback-at", Scopes: []string{"profile:read"},
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	_, err = st.AccessTokens().GetAccessTokenByHash(ctx, "rollback-at")
	require.ErrorIs(t, err, store.ErrNotFound)
}
