// Package oauthx holds the wire-level vocabulary of the OAuth2 token
// endpoint (RFC 6749): the token request and response shapes, the fixed
// error taxonomy, and scope string handling.
//
// The types here carry no behaviour beyond serialization; all protocol
// decisions live in internal/oauth2/service.
package oauthx
