package domain

import "time"

// AccessToken models a stored access token record. The opaque token value
// itself is never persisted, only its SHA-256 fingerprint. Rows are created
// exactly once per successful grant and never updated; a refresh supersedes
// the old token with a new row.
type AccessToken struct {
	ID        string
	ClientID  string
	GrantType string // grant type that produced this token
	TokenHash string // base64url SHA-256 fingerprint of the opaque value
	Scopes    []string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshToken models a stored refresh token record. Refresh tokens are
// reused across refresh exchanges until they expire or are revoked.
type RefreshToken struct {
	ID        string
	ClientID  string
	TokenHash string
	Scopes    []string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
