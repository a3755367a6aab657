// Package http wires the token endpoint and admin surface onto a
// standard library ServeMux.
package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/service"
	"github.com/keeradon/grantd/internal/oauth2/store"
	"github.com/keeradon/grantd/pkg/httpx"
	"github.com/keeradon/grantd/pkg/slogx"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RouterConfig carries everything the router needs. AdminToken may be
// empty, in which case the admin endpoints are not registered at all.
type RouterConfig struct {
	Logger     *slog.Logger
	Store      store.Store
	Tokens     *service.TokenService
	Clients    *service.ClientService
	GrantTypes *service.GrantTypeService
	AdminToken string
	Version    string
	StartTime  time.Time
}

// NewRouter builds the full route table.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	tokenLimit := httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "client_id")

	token := &TokenHandler{TokenService: cfg.Tokens}
	revoke := &RevokeHandler{TokenService: cfg.Tokens}

	mux.Handle("POST /v1/oauth2/token", tokenLimit(token))
	mux.Handle("POST /v1/oauth2/revoke", tokenLimit(revoke))

	mux.Handle("GET /livez", httpx.RateLimitByIP(httpx.PublicLimit)(Livez(cfg.StartTime, cfg.Version)))
	mux.Handle("GET /readyz", httpx.RateLimitByIP(httpx.PublicLimit)(Readyz(cfg.Store)))

	if cfg.AdminToken != "" {
		adminAuth := requireAdminToken(cfg.AdminToken)
		adminLimit := httpx.RateLimitByIP(httpx.ModerateLimit)
		admin := func(h http.Handler) http.Handler {
			return httpx.Chain(h, adminAuth, adminLimit)
		}

		clients := &ClientsHandler{ClientService: cfg.Clients}
		grantTypes := &GrantTypesHandler{GrantTypeService: cfg.GrantTypes}

		mux.Handle("POST /v1/admin/clients", admin(http.HandlerFunc(clients.Create)))
		mux.Handle("GET /v1/admin/clients", admin(http.HandlerFunc(clients.List)))
		mux.Handle("DELETE /v1/admin/clients/{id}", admin(http.HandlerFunc(clients.Delete)))
		mux.Handle("GET /v1/admin/grant-types", admin(http.HandlerFunc(grantTypes.List)))
		mux.Handle("PATCH /v1/admin/grant-types/{name}", admin(http.HandlerFunc(grantTypes.Update)))
	} else {
		cfg.Logger.Warn("admin token not configured, admin endpoints disabled")
	}

	return slogx.HTTPMiddleware(cfg.Logger)(mux)
}

// requireAdminToken gates a route behind the static admin bearer token.
func requireAdminToken(token string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				slogx.FromContext(r.Context()).Warn("admin request rejected", "path", r.URL.Path)
				httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
