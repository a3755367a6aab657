package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/keeradon/grantd/internal/oauth2/service"
	"github.com/keeradon/grantd/pkg/oauthx"
	"github.com/keeradon/grantd/pkg/slogx"
)

// RevokeHandler serves POST /v1/oauth2/revoke (RFC 7009). The caller
// authenticates with its client credentials and names the refresh token
// to revoke. Per the RFC, revoking an unknown or foreign token still
// returns 200.
type RevokeHandler struct {
	TokenService *service.TokenService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		oauthx.ErrInvalidRequest.WriteError(w)
		return
	}

	clientID := strings.TrimSpace(r.Form.Get("client_id"))
	clientSecret := r.Form.Get("client_secret")
	token := r.Form.Get("token")
	if clientID == "" || clientSecret == "" || token == "" {
		oauthx.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.TokenService.RevokeRefreshToken(ctx, clientID, clientSecret, token); err != nil {
		var oe *oauthx.Error
		if errors.As(err, &oe) {
			oe.WriteError(w)
			return
		}
		log.Error("token revocation failed", "client_id", clientID, "err", err)
		oauthx.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}
