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

type TemplateHandler struct {
	templates *store.TemplateStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTemplateHandler(ts *store.TemplateStore, hub *websocket.Hub, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: ts, hub: hub, logger: logger}
}

func (h *TemplateHandler) notify(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type templateItemRequest struct {
	ItemID   int64   `json:"item_id"`
	Quantity *string `json:"quantity"`
}

type templateCreateRequest struct {
	UserID    int64                 `json:"user_id"`
	Name      string                `json:"name"`
	IsDefault bool                  `json:"is_default"`
	Items     []templateItemRequest `json:"items"`
}

type templateUpdateRequest struct {
	Name      *string `json:"name"`
	IsDefault *bool   `json:"is_default"`
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.UserID == 0 || req.Name == "" {
		badRequest(w, "user_id and name are required")
		return
	}

	items := make([]store.TemplateItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = store.TemplateItemInput{ItemID: it.ItemID, Quantity: it.Quantity}
	}

	tpl, err := h.templates.Create(req.UserID, req.Name, req.IsDefault, items)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to create template")
		return
	}

	h.notify(websocket.NewMessage(websocket.EntityTemplate, "created", tpl.ID).ForUser(req.UserID))
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil || userID == nil {
		badRequest(w, "user_id is required")
		return
	}

	templates, err := h.templates.ListByUser(*userID)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	tpl, err := h.templates.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get template")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req templateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			badRequest(w, "name cannot be empty")
			return
		}
		req.Name = &trimmed
	}

	tpl, err := h.templates.Update(id, store.TemplateUpdate{
		Name:      req.Name,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update template")
		return
	}

	h.notify(websocket.NewMessage(websocket.EntityTemplate, "updated", tpl.ID).ForUser(tpl.UserID))
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.templates.Delete(id); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete template")
		return
	}

	h.notify(websocket.NewMessage(websocket.EntityTemplate, "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req templateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.ItemID == 0 {
		badRequest(w, "item_id is required")
		return
	}

	ti, err := h.templates.AddItem(id, req.ItemID, req.Quantity)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to add template item")
		return
	}

	h.notify(websocket.NewMessage(websocket.EntityTemplate, "updated", id))
	writeJSON(w, http.StatusCreated, ti)
}

func (h *TemplateHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	itemID, err := parseIDParam(r, "item_id")
	if err != nil {
		badRequest(w, "invalid item_id")
		return
	}

	if err := h.templates.RemoveItem(id, itemID); err != nil {
		writeStoreError(w, h.logger, err, "failed to remove template item")
		return
	}

	h.notify(websocket.NewMessage(websocket.EntityTemplate, "updated", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	userID, err := queryInt64(r, "user_id")
	if err != nil || userID == nil {
		badRequest(w, "user_id is required")
		return
	}

	result, err := h.templates.Apply(id, *userID)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to apply template")
		return
	}

	h.notify(websocket.NewMessage(websocket.EntityTemplate, "applied", id).
		ForUser(*userID).
		With("items_added", result.ItemsAdded))
	writeJSON(w, http.StatusOK, result)
}
