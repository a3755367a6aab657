package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/keeradon/grantd/internal/oauth2/domain"
	"github.com/keeradon/grantd/internal/oauth2/service"
	"github.com/keeradon/grantd/pkg/httpx"
	"github.com/keeradon/grantd/pkg/slogx"
)

// ClientsHandler bundles the admin client-management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

type createClientRequest struct {
	Name       string   `json:"name"`
	GrantTypes []string `json:"grant_types"`
	Scopes     []string `json:"scopes"`
}

type clientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	GrantTypes []string  `json:"grant_types"`
	Scopes     []string  `json:"scopes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Secret is only populated on creation. It is not recoverable
	// afterwards, the store keeps a hash.
	Secret string `json:"secret,omitempty"`
}

func toClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:         c.ID,
		Name:       c.Name,
		GrantTypes: c.GrantTypes,
		Scopes:     c.Scopes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// Create serves POST /v1/admin/clients.
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	client, secret, err := h.ClientService.CreateClient(ctx, service.NewClient{
		Name:       req.Name,
		GrantTypes: req.GrantTypes,
		Scopes:     req.Scopes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClientName),
			errors.Is(err, service.ErrNoGrantTypesListed),
			errors.Is(err, service.ErrUnknownGrantType):
			httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			log.Error("client creation failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		}
		return
	}

	resp := toClientResponse(client)
	resp.Secret = secret

	log.Info("client created", "client_id", client.ID, "name", client.Name)
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// List serves GET /v1/admin/clients.
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		log.Error("client listing failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Delete serves DELETE /v1/admin/clients/{id}.
func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")
	if err := h.ClientService.DeleteClient(ctx, id); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "client not found"})
			return
		}
		log.Error("client deletion failed", "client_id", id, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	log.Info("client deleted", "client_id", id)
	w.WriteHeader(http.StatusNoContent)
}
