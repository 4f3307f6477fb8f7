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

type ItemHandler struct {
	items  *store.ItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(is *store.ItemStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: is, hub: hub, logger: logger}
}

func (h *ItemHandler) notify(action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(websocket.EntityItem, action, id)
	}
}

type itemCreateRequest struct {
	Name            string  `json:"name"`
	DefaultQuantity *string `json:"default_quantity"`
	QuantityIsInt   bool    `json:"quantity_is_int"`
	Section         *string `json:"section"`
	StoreIDs        []int64 `json:"store_ids"`
}

type itemUpdateRequest struct {
	Name            *string `json:"name"`
	DefaultQuantity *string `json:"default_quantity"`
	QuantityIsInt   *bool   `json:"quantity_is_int"`
	Section         *string `json:"section"`
	StoreIDs        []int64 `json:"store_ids"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	item, err := h.items.Create(req.Name, req.DefaultQuantity, req.QuantityIsInt, req.Section, req.StoreIDs)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to create item")
		return
	}

	h.notify("created", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := queryInt64(r, "store_id")
	if err != nil {
		badRequest(w, "invalid store_id")
		return
	}
	section := queryString(r, "section")

	items, err := h.items.List(storeID, section)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req itemUpdateRequest
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

	item, err := h.items.Update(id, store.ItemUpdate{
		Name:            req.Name,
		DefaultQuantity: req.DefaultQuantity,
		QuantityIsInt:   req.QuantityIsInt,
		Section:         req.Section,
		StoreIDs:        req.StoreIDs,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update item")
		return
	}

	h.notify("updated", item.ID)
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.items.Delete(id); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete item")
		return
	}

	h.notify("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
