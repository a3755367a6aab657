package domain

import "time"

// AuthorizationCode is a single-use bearer secret minted by the
// front-channel authorization flow and redeemed back-channel at the token
// endpoint. Stored hashed; UsedAt is set atomically on redemption so two
// concurrent exchanges cannot both succeed.
type AuthorizationCode struct {
	ID          string
	ClientID    string
	CodeHash    string
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}
