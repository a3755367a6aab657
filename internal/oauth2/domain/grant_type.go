package domain

import "time"

// Grant type names understood by this server.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeRefreshToken      = "refresh_token"
)

// GrantType is a named protocol mode with a global enabled flag. A grant
// type must exist and be enabled for its processor to proceed, regardless
// of per-client allow-lists.
type GrantType struct {
	Name      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
