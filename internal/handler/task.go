package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
	"github.com/dukerupert/bywater/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, hub: hub, logger: logger}
}

func (h *TaskHandler) notify(action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(websocket.EntityTask, action, id)
	}
}

type taskCreateRequest struct {
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	DueDate    *time.Time `json:"due_date"`
	AssignedTo *int64     `json:"assigned_to"`
}

type taskUpdateRequest struct {
	Title      *string    `json:"title"`
	Category   *string    `json:"category"`
	Completed  *bool      `json:"completed"`
	DueDate    *time.Time `json:"due_date"`
	AssignedTo *int64     `json:"assigned_to"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		badRequest(w, "title is required")
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}

	task, err := h.tasks.Create(req.Title, req.Category, req.DueDate, req.AssignedTo)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to create task")
		return
	}

	h.notify("created", task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	assignedTo, err := queryInt64(r, "assigned_to")
	if err != nil {
		badRequest(w, "invalid assigned_to")
		return
	}

	var completed *bool
	if raw := r.URL.Query().Get("completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, "invalid completed")
			return
		}
		completed = &v
	}

	tasks, err := h.tasks.List(store.TaskFilter{
		AssignedTo: assignedTo,
		Category:   queryString(r, "category"),
		Completed:  completed,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	task, err := h.tasks.Update(id, store.TaskUpdate{
		Title:      req.Title,
		Category:   req.Category,
		Completed:  req.Completed,
		DueDate:    req.DueDate,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update task")
		return
	}

	h.notify("updated", task.ID)
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete task")
		return
	}

	h.notify("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
