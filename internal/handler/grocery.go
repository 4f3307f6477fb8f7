package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
	"github.com/dukerupert/bywater/internal/websocket"
)

// GroceryHandler serves per-user grocery list entries. Every operation
// takes the acting user explicitly; there is no session user.
type GroceryHandler struct {
	groceries *store.GroceryStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, hub *websocket.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceries: gs, hub: hub, logger: logger}
}

func (h *GroceryHandler) notify(action string, id, userID int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityGroceryItem, action, id).ForUser(userID))
	}
}

type groceryAddRequest struct {
	UserID   int64   `json:"user_id"`
	ItemID   int64   `json:"item_id"`
	Quantity *string `json:"quantity"`
}

type groceryUpdateRequest struct {
	Quantity  *string `json:"quantity"`
	Purchased *bool   `json:"purchased"`
}

func (h *GroceryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req groceryAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.UserID == 0 || req.ItemID == 0 {
		badRequest(w, "user_id and item_id are required")
		return
	}

	entry, err := h.groceries.Add(req.UserID, req.ItemID, req.Quantity)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to add grocery item")
		return
	}

	h.notify("created", entry.ID, req.UserID)
	writeJSON(w, http.StatusCreated, entry)
}

func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil || userID == nil {
		badRequest(w, "user_id is required")
		return
	}
	storeID, err := queryInt64(r, "store_id")
	if err != nil {
		badRequest(w, "invalid store_id")
		return
	}

	entries, err := h.groceries.ListByUser(*userID, storeID)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list grocery items")
		return
	}
	if entries == nil {
		entries = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *GroceryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	entry, err := h.groceries.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get grocery item")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req groceryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	entry, err := h.groceries.Update(id, *userID, store.GroceryItemUpdate{
		Quantity:  req.Quantity,
		Purchased: req.Purchased,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update grocery item")
		return
	}

	h.notify("updated", entry.ID, *userID)
	writeJSON(w, http.StatusOK, entry)
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.groceries.Delete(id, *userID); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete grocery item")
		return
	}

	h.notify("deleted", id, *userID)
	w.WriteHeader(http.StatusNoContent)
}
