package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keeradon/grantd/internal/oauth2/service"
	"github.com/keeradon/grantd/pkg/httpx"
	"github.com/keeradon/grantd/pkg/slogx"
)

// GrantTypesHandler bundles the admin grant-type endpoints. Grant types
// are seeded by migration; admins can only toggle them on and off.
type GrantTypesHandler struct {
	GrantTypeService *service.GrantTypeService
}

type grantTypeResponse struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type updateGrantTypeRequest struct {
	Enabled *bool `json:"enabled"`
}

// List serves GET /v1/admin/grant-types.
func (h *GrantTypesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	gts, err := h.GrantTypeService.ListGrantTypes(ctx)
	if err != nil {
		log.Error("grant type listing failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	out := make([]grantTypeResponse, 0, len(gts))
	for _, gt := range gts {
		out = append(out, grantTypeResponse{Name: gt.Name, Enabled: gt.Enabled})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Update serves PATCH /v1/admin/grant-types/{name}.
func (h *GrantTypesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req updateGrantTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	name := r.PathValue("name")
	if err := h.GrantTypeService.SetGrantTypeEnabled(ctx, name, *req.Enabled); err != nil {
		if errors.Is(err, service.ErrGrantTypeNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "grant type not found"})
			return
		}
		log.Error("grant type update failed", "grant_type", name, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	log.Info("grant type updated", "grant_type", name, "enabled", *req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}
