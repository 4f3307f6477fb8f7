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

// RegistryHandler serves the store registry (shopping locations).
type RegistryHandler struct {
	registry *store.Registry
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewRegistryHandler(reg *store.Registry, hub *websocket.Hub, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{registry: reg, hub: hub, logger: logger}
}

func (h *RegistryHandler) notify(action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(websocket.EntityStore, action, id)
	}
}

type storeRequest struct {
	Name string `json:"name"`
}

func (h *RegistryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	st, err := h.registry.Create(req.Name)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to create store")
		return
	}

	h.notify("created", st.ID)
	writeJSON(w, http.StatusCreated, st)
}

func (h *RegistryHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.registry.List()
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list stores")
		return
	}
	if stores == nil {
		stores = []model.Store{}
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *RegistryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	st, err := h.registry.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get store")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *RegistryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	st, err := h.registry.Update(id, req.Name)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update store")
		return
	}

	h.notify("updated", st.ID)
	writeJSON(w, http.StatusOK, st)
}

func (h *RegistryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.registry.Delete(id); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete store")
		return
	}

	h.notify("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
