package oauthx

// AccessTokenRequest is the parsed body of a POST to the token endpoint.
// Every field is optional at this level; each grant processor checks the
// presence of the fields its grant type requires.
type AccessTokenRequest struct {
	// GrantType selects the processor: "authorization_code",
	// "client_credentials" or "refresh_token".
	GrantType string

	// ClientID identifies a previously registered client.
	ClientID string

	// ClientSecret authenticates the client. Never log this value.
	ClientSecret string

	// Code is the authorization code being redeemed
	// (authorization_code grant only).
	Code string

	// RedirectURI repeats the redirect_uri used during authorization,
	// if one was sent.
	RedirectURI string

	// RefreshToken is the opaque refresh token being exchanged
	// (refresh_token grant only).
	RefreshToken string

	// Scope is the raw scope string, space- or comma-delimited.
	Scope string
}

// AccessTokenResponse is the success body of the token endpoint.
type AccessTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"` // always "bearer"
	ExpiresIn    int    `json:"expires_in"` // seconds until the access token expires
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"` // space-delimited
}

// TokenTypeBearer is the only token_type this server issues.
const TokenTypeBearer = "bearer"
