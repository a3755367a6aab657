package grantsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keeradon/grantd/pkg/oauthx"
)

// SDKClient is a client for the grantd token service. The zero value is
// not usable; construct with New.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminToken authorizes calls to the admin surface. Leave empty when
	// only the token endpoint is needed.
	AdminToken string
}

// New creates a client for the service at baseURL.
func New(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and decodes the
// response into target when the expected status arrives. Admin endpoints
// get the bearer token attached.
func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	body io.Reader,
	target any,
	expectedStatus int,
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AdminToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse lifts an error body into a typed error. OAuth2-style
// bodies become *oauthx.Error; anything else becomes a plain error carrying
// the status and body.
func parseErrorResponse(statusCode int, body []byte) error {
	var oe oauthx.Error
	if err := json.Unmarshal(body, &oe); err == nil && oe.Code != "" {
		oe.StatusCode = statusCode
		return &oe
	}
	return fmt.Errorf("request failed with status %d: %s", statusCode, string(body))
}

// Healthy reports whether the service is live and ready.
func (c *SDKClient) Healthy(ctx context.Context) error {
	for _, path := range []string{"/livez", "/readyz"} {
		if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, http.StatusOK); err != nil {
			return err
		}
	}
	return nil
}
