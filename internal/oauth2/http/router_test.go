package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/service"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/internal/oauth2/store/drivers/sqlite"
	"github.com/keeradon/grantd/pkg/cryptox"
	"github.com/keeradon/grantd/pkg/idx"
	"github.com/keeradon/grantd/pkg/oauthx"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "grantd-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestRouter(t *testing.T, adminToken string) (http.Handler, store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		filepath.Join(t.TempDir(), "test.db"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	router := NewRouter(RouterConfig{
		Logger: slog.New(slog.DiscardHandler),
		Store:  st,
		Tokens: &service.TokenService{
			Store:      st,
			AccessTTL:  time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Clients:    &service.ClientService{Store: st},
		GrantTypes: &service.GrantTypeService{Store: st},
		AdminToken: adminToken,
		Version:    "test",
		StartTime:  time.Now(),
	})
	return router, st
}

func registerClient(t *testing.T, st store.Store, grantTypes, scopes []string) (domain.Client, string) {
	t.Helper()

	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	hash, err := cryptox.HashSecret(secret)
	require.NoError(t, err)

	c := domain.Client{
		ID:         idx.New().String(),
		Name:       "http-test-app",
		SecretHash: hash,
		GrantTypes: grantTypes,
		Scopes:     scopes,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), c))
	return c, secret
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTokenEndpoint(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t, "")
	client, secret := registerClient(t, st,
		[]string{domain.GrantTypeClientCredentials, domain.GrantTypeRefreshToken},
		[]string{"profile:read"},
	)

	t.Run("client_credentials grant succeeds", func(t *testing.T) {
		rec := postForm(router, "/v1/oauth2/token", url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {client.ID},
			"client_secret": {secret},
			"scope":         {"profile:read"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var resp oauthx.AccessTokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.AccessToken, 43)
		require.Equal(t, "bearer", resp.TokenType)
		require.Equal(t, 3600, resp.ExpiresIn)
		require.Equal(t, "profile:read", resp.Scope)
		require.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("missing grant_type yields invalid_request", func(t *testing.T) {
		rec := postForm(router, "/v1/oauth2/token", url.Values{
			"client_id": {client.ID},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid_request", body["error"])
	})

	t.Run("bad credentials yield invalid_client with 401", func(t *testing.T) {
		rec := postForm(router, "/v1/oauth2/token", url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {client.ID},
			"client_secret": {"wrong"},
			"scope":         {"profile:read"},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid_client", body["error"])
	})

	t.Run("unknown grant_type yields unsupported_grant_type", func(t *testing.T) {
		rec := postForm(router, "/v1/oauth2/token", url.Values{
			"grant_type":    {"password"},
			"client_id":     {client.ID},
			"client_secret": {secret},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "unsupported_grant_type", body["error"])
	})

	t.Run("wrong content type is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/oauth2/token",
			strings.NewReader(`{"grant_type":"client_credentials"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET is not routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/oauth2/token", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRevokeEndpoint(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t, "")
	client, secret := registerClient(t, st,
		[]string{domain.GrantTypeClientCredentials, domain.GrantTypeRefreshToken},
		[]string{"profile:read"},
	)

	rec := postForm(router, "/v1/oauth2/token", url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {client.ID},
		"client_secret": {secret},
		"scope":         {"profile:read"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var seed oauthx.AccessTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seed))

	rec = postForm(router, "/v1/oauth2/revoke", url.Values{
		"client_id":     {client.ID},
		"client_secret": {secret},
		"token":         {seed.RefreshToken},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The revoked token no longer refreshes.
	rec = postForm(router, "/v1/oauth2/token", url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {client.ID},
		"client_secret": {secret},
		"refresh_token": {seed.RefreshToken},
		"scope":         {"profile:read"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_grant", body["error"])
}

func TestAdminEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, testAdminToken)

	adminReq := func(method, path string, body any) *httptest.ResponseRecorder {
		var rd *bytes.Reader
		if body != nil {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rd = bytes.NewReader(b)
		} else {
			rd = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, rd)
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("rejects requests without the admin token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/clients", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/v1/admin/clients", nil)
		req.Header.Set("Authorization", "Bearer wrong-token")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("creates, lists and deletes a client", func(t *testing.T) {
		rec := adminReq(http.MethodPost, "/v1/admin/clients", createClientRequest{
			Name:       "cli-created",
			GrantTypes: []string{domain.GrantTypeClientCredentials},
			Scopes:     []string{"profile:read"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var created clientResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)
		require.Len(t, created.Secret, 32)

		rec = adminReq(http.MethodGet, "/v1/admin/clients", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var listed []clientResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		require.Len(t, listed, 1)
		require.Empty(t, listed[0].Secret)

		rec = adminReq(http.MethodDelete, "/v1/admin/clients/"+created.ID, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = adminReq(http.MethodDelete, "/v1/admin/clients/"+created.ID, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects invalid client registrations", func(t *testing.T) {
		rec := adminReq(http.MethodPost, "/v1/admin/clients", createClientRequest{
			Name:       "bad",
			GrantTypes: []string{"implicit"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("toggles grant types", func(t *testing.T) {
		rec := adminReq(http.MethodGet, "/v1/admin/grant-types", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var gts []grantTypeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gts))
		require.Len(t, gts, 3)

		disabled := false
		rec = adminReq(http.MethodPatch, "/v1/admin/grant-types/refresh_token",
			updateGrantTypeRequest{Enabled: &disabled})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = adminReq(http.MethodPatch, "/v1/admin/grant-types/device_code",
			updateGrantTypeRequest{Enabled: &disabled})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminEndpointsDisabledWithoutToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, "")

	for _, path := range []string{"/livez", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
