package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
	"github.com/dukerupert/bywater/internal/websocket"
)

type ProviderHandler struct {
	providers *store.ProviderStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewProviderHandler(ps *store.ProviderStore, hub *websocket.Hub, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{providers: ps, hub: hub, logger: logger}
}

func (h *ProviderHandler) notify(action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(websocket.EntityProvider, action, id)
	}
}

type providerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Address string `json:"address"`
	Info    string `json:"info"`
}

type providerUpdateRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	Address *string `json:"address"`
	Info    *string `json:"info"`
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	p, err := h.providers.Create(req.Name, req.Phone, req.Email, req.Website, req.Address, req.Info)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to create provider")
		return
	}

	h.notify("created", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providers.List()
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list providers")
		return
	}
	if providers == nil {
		providers = []model.Provider{}
	}
	writeJSON(w, http.StatusOK, providers)
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	p, err := h.providers.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get provider")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req providerUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	p, err := h.providers.Update(id, store.ProviderUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
		Address: req.Address,
		Info:    req.Info,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update provider")
		return
	}

	h.notify("updated", p.ID)
	writeJSON(w, http.StatusOK, p)
}

func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.providers.Delete(id); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete provider")
		return
	}

	h.notify("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
