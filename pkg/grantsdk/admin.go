package grantsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ClientRecord is a registered client as reported by the admin surface.
// Secret is populated only in the response to CreateClient.
type ClientRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	GrantTypes []string  `json:"grant_types"`
	Scopes     []string  `json:"scopes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Secret     string    `json:"secret,omitempty"`
}

// GrantTypeRecord is a grant type and its enabled state.
type GrantTypeRecord struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// CreateClient registers a new client. The returned record carries the
// plaintext secret; it cannot be retrieved again.
func (c *SDKClient) CreateClient(
	ctx context.Context,
	name string,
	grantTypes, scopes []string,
) (*ClientRecord, error) {
	body, err := json.Marshal(map[string]any{
		"name":        name,
		"grant_types": grantTypes,
		"scopes":      scopes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var created ClientRecord
	if err := c.doJSON(ctx, http.MethodPost, "/v1/admin/clients",
		bytes.NewReader(body), &created, http.StatusCreated); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListClients returns all registered clients.
func (c *SDKClient) ListClients(ctx context.Context) ([]ClientRecord, error) {
	var clients []ClientRecord
	if err := c.doJSON(ctx, http.MethodGet, "/v1/admin/clients",
		nil, &clients, http.StatusOK); err != nil {
		return nil, err
	}
	return clients, nil
}

// DeleteClient removes a client and, through the datastore, all of its
// tokens and codes.
func (c *SDKClient) DeleteClient(ctx context.Context, clientID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/admin/clients/"+clientID,
		nil, nil, http.StatusNoContent)
}

// ListGrantTypes returns the grant types and their enabled state.
func (c *SDKClient) ListGrantTypes(ctx context.Context) ([]GrantTypeRecord, error) {
	var gts []GrantTypeRecord
	if err := c.doJSON(ctx, http.MethodGet, "/v1/admin/grant-types",
		nil, &gts, http.StatusOK); err != nil {
		return nil, err
	}
	return gts, nil
}

// SetGrantTypeEnabled toggles a grant type server-wide.
func (c *SDKClient) SetGrantTypeEnabled(ctx context.Context, name string, enabled bool) error {
	body, err := json.Marshal(map[string]bool{"enabled": enabled})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.doJSON(ctx, http.MethodPatch, "/v1/admin/grant-types/"+name,
		bytes.NewReader(body), nil, http.StatusNoContent)
}
