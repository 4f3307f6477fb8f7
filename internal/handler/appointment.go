package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
	"github.com/dukerupert/bywater/internal/websocket"
)

type AppointmentHandler struct {
	appointments *store.AppointmentStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewAppointmentHandler(as *store.AppointmentStore, hub *websocket.Hub, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointments: as, hub: hub, logger: logger}
}

func (h *AppointmentHandler) notify(action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(websocket.EntityAppointment, action, id)
	}
}

type appointmentCreateRequest struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Notes       string    `json:"notes"`
	ProviderID  *int64    `json:"provider_id"`
	PatientName string    `json:"patient_name"`
	CreatedBy   int64     `json:"created_by"`
}

type appointmentUpdateRequest struct {
	Title       *string    `json:"title"`
	Date        *time.Time `json:"date"`
	Type        *string    `json:"type"`
	Notes       *string    `json:"notes"`
	ProviderID  *int64     `json:"provider_id"`
	PatientName *string    `json:"patient_name"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appointmentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Date.IsZero() || req.CreatedBy == 0 {
		badRequest(w, "title, date, and created_by are required")
		return
	}
	if req.Type == "" {
		req.Type = "other"
	}

	a, err := h.appointments.Create(req.Title, req.Date, req.Type, req.Notes, req.ProviderID, req.PatientName, req.CreatedBy)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to create appointment")
		return
	}

	h.notify("created", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	createdBy, err := queryInt64(r, "created_by")
	if err != nil {
		badRequest(w, "invalid created_by")
		return
	}
	patientName := queryString(r, "patient_name")

	appointments, err := h.appointments.List(createdBy, patientName)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to list appointments")
		return
	}
	if appointments == nil {
		appointments = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	a, err := h.appointments.GetByID(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to get appointment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req appointmentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	a, err := h.appointments.Update(id, store.AppointmentUpdate{
		Title:       req.Title,
		Date:        req.Date,
		Type:        req.Type,
		Notes:       req.Notes,
		ProviderID:  req.ProviderID,
		PatientName: req.PatientName,
	})
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to update appointment")
		return
	}

	h.notify("updated", a.ID)
	writeJSON(w, http.StatusOK, a)
}

// ClearProvider detaches the provider from an appointment without
// touching any other field.
func (h *AppointmentHandler) ClearProvider(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	a, err := h.appointments.ClearProvider(id)
	if err != nil {
		writeStoreError(w, h.logger, err, "failed to clear provider")
		return
	}

	h.notify("updated", a.ID)
	writeJSON(w, http.StatusOK, a)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.appointments.Delete(id); err != nil {
		writeStoreError(w, h.logger, err, "failed to delete appointment")
		return
	}

	h.notify("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
