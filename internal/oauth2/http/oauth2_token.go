package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/keeradon/grantd/internal/oauth2/service"
	"github.com/keeradon/grantd/pkg/httpx"
	"github.com/keeradon/grantd/pkg/oauthx"
	"github.com/keeradon/grantd/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token.
// Accepts application/x-www-form-urlencoded per RFC 6749.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		oauthx.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		oauthx.ErrInvalidRequest.WriteError(w)
		return
	}

	req := requestFromForm(r.Form)

	resp, err := h.TokenService.Exchange(ctx, req)
	if err != nil {
		var oe *oauthx.Error
		if errors.As(err, &oe) {
			oe.WriteError(w)
			return
		}
		// Infrastructure failure: never mapped onto a protocol error code.
		log.Error("token exchange failed", "grant_type", req.GrantType, "err", err)
		oauthx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// requestFromForm lifts the parsed form body into the token request
// shape. Field presence is the processors' concern, not the handler's.
func requestFromForm(form url.Values) oauthx.AccessTokenRequest {
	return oauthx.AccessTokenRequest{
		GrantType:    strings.TrimSpace(form.Get("grant_type")),
		ClientID:     strings.TrimSpace(form.Get("client_id")),
		ClientSecret: form.Get("client_secret"),
		Code:         strings.TrimSpace(form.Get("code")),
		RedirectURI:  strings.TrimSpace(form.Get("redirect_uri")),
		RefreshToken: form.Get("refresh_token"),
		Scope:        strings.TrimSpace(form.Get("scope")),
	}
}
