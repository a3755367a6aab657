// Package grantsdk is a Go client for the grantd token service. It covers
// the token endpoint grants, token revocation, the health probes and the
// admin surface.
//
// Basic usage:
//
//	sdk := grantsdk.New("https://auth.internal")
//	tokens, err := sdk.ClientCredentialsGrant(ctx, clientID, clientSecret,
//		[]string{"profile:read"})
//
// Token endpoint failures are returned as *oauthx.Error, so callers can
// branch on the RFC 6749 error code:
//
//	var oe *oauthx.Error
//	if errors.As(err, &oe) && oe.Code == oauthx.ErrorCodeInvalidGrant {
//		// re-authenticate
//	}
package grantsdk
