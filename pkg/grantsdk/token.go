package grantsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/keeradon/grantd/pkg/oauthx"
)

// ClientCredentialsGrant requests tokens using the client_credentials
// grant. Used for machine-to-machine callers acting as themselves.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*oauthx.AccessTokenResponse, error) {
	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"scope":         {strings.Join(scopes, " ")},
	}
	return c.requestToken(ctx, data)
}

// RefreshGrant exchanges a refresh token for a fresh access token with the
// given scope, which must not exceed the refresh token's grant.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
	scopes []string,
) (*oauthx.AccessTokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
		"scope":         {strings.Join(scopes, " ")},
	}
	return c.requestToken(ctx, data)
}

// AuthorizationCodeGrant redeems an authorization code. redirectURI must
// repeat the value bound to the code, or be empty when none was.
func (c *SDKClient) AuthorizationCodeGrant(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI string,
) (*oauthx.AccessTokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
	}
	if redirectURI != "" {
		data.Set("redirect_uri", redirectURI)
	}
	return c.requestToken(ctx, data)
}

// RevokeToken revokes a refresh token owned by the authenticated client.
func (c *SDKClient) RevokeToken(ctx context.Context, clientID, clientSecret, token string) error {
	data := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"token":         {token},
	}

	resp, err := c.postForm(ctx, "/v1/oauth2/revoke", data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}
	return nil
}

func (c *SDKClient) requestToken(ctx context.Context, data url.Values) (*oauthx.AccessTokenResponse, error) {
	resp, err := c.postForm(ctx, "/v1/oauth2/token", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	var tokenResp oauthx.AccessTokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tokenResp, nil
}

func (c *SDKClient) postForm(ctx context.Context, path string, data url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url(path),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}
