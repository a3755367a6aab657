package domain

import "time"

// Client is a registered application. Clients are confidential: every
// registration stores an Argon2id hash of the secret, and the plaintext is
// surfaced exactly once at creation. Within a token request a Client is
// read-only.
type Client struct {
	ID         string
	Name       string
	SecretHash string
	GrantTypes []string // grant types this client may use
	Scopes     []string // scopes this client may be granted
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AllowsGrantType reports whether the client's allow-list contains name.
func (c Client) AllowsGrantType(name string) bool {
	for _, g := range c.GrantTypes {
		if g == name {
			return true
		}
	}
	return false
}
