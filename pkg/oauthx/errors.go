package oauthx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// OAuth2 error codes per RFC 6749 §5.2.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeUnauthorizedClient   = "unauthorized_client"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeServerError          = "server_error"
)

// Error is a structured OAuth2 token-endpoint error. It implements the
// error interface so grant processors can return it directly, and it knows
// how to render itself as an RFC 6749 error body.
//
// Infrastructure faults (datastore unreachable, etc.) must never be wrapped
// into an Error; they stay ordinary errors and surface as server_error at
// the HTTP edge.
type Error struct {
	// StatusCode is the HTTP status for this error.
	StatusCode int `json:"-"`

	// Code is one of the ErrorCode* constants.
	Code string `json:"error"`

	// Description is human-readable and must not leak internals.
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError renders e as a JSON error response with no-store caching,
// matching the token endpoint's response requirements.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// Predefined errors. Processors return these instances so callers can
// match with errors.Is.
var (
	// ErrInvalidRequest covers a missing, malformed or repeated required
	// parameter. The description deliberately does not name the field.
	ErrInvalidRequest = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is missing a required parameter or is otherwise malformed",
	}

	// ErrInvalidClient covers both an unknown client id and a wrong
	// secret; the two cases are indistinguishable on the wire.
	ErrInvalidClient = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidClient,
		Description: "client authentication failed",
	}

	// ErrInvalidGrant covers a bad, expired, revoked or already-consumed
	// authorization code or refresh token, or one issued to another client.
	ErrInvalidGrant = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "the provided grant is invalid, expired or revoked",
	}

	// ErrUnauthorizedClient means the authenticated client is not allowed
	// to use the requested grant type.
	ErrUnauthorizedClient = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnauthorizedClient,
		Description: "the client is not authorized to use this grant type",
	}

	// ErrUnsupportedGrantType means the grant type is unknown or disabled.
	ErrUnsupportedGrantType = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedGrantType,
		Description: "the requested grant type is not supported",
	}

	// ErrInvalidScope means the requested scope is empty or exceeds the
	// scope of the underlying grant.
	ErrInvalidScope = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidScope,
		Description: "the requested scope is invalid or exceeds the granted scope",
	}

	// ErrServerError reports an infrastructure failure. It is only ever
	// produced at the HTTP edge, never by a grant processor.
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "the authorization server encountered an unexpected condition",
	}
)
