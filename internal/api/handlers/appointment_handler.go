package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartmed/consultas/internal/application/services"
	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

// AppointmentService defines the interface for appointment lifecycle operations
type AppointmentService interface {
	Book(ctx context.Context, req services.BookRequest) (*entities.Appointment, error)
	Get(ctx context.Context, id string) (*entities.Appointment, error)
	Cancel(ctx context.Context, id, reason string) (*entities.Appointment, error)
	Reschedule(ctx context.Context, id string, newTime time.Time, reason string) (*services.RescheduleResult, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, patientID string, filter repositories.HistoryFilter) ([]services.HistoryEntry, error)
}

// SchedulerService defines the interface for automatic scheduling
type SchedulerService interface {
	ScheduleAutomatically(ctx context.Context, req services.AutoScheduleRequest) (*entities.Appointment, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	appointments AppointmentService
	scheduler    SchedulerService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointments AppointmentService, scheduler SchedulerService) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		scheduler:    scheduler,
	}
}

// ScheduleAutomatically handles POST /api/appointments/auto
func (h *AppointmentHandler) ScheduleAutomatically(w http.ResponseWriter, r *http.Request) {
	var req services.AutoScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.scheduler.ScheduleAutomatically(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// Book handles POST /api/appointments
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req services.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.appointments.Book(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// Get handles GET /api/appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	appointment, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// Cancel handles POST /api/appointments/{id}/cancel
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.appointments.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// Reschedule handles POST /api/appointments/{id}/reschedule
func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var req struct {
		NewTime time.Time `json:"new_time"`
		Reason  string    `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.NewTime.IsZero() {
		respondWithError(w, http.StatusBadRequest, "new_time is required")
		return
	}

	result, err := h.appointments.Reschedule(r.Context(), id, req.NewTime, req.Reason)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/appointments/{id}
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	if err := h.appointments.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/patients/{id}/history
func (h *AppointmentHandler) History(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	filter, err := historyFilterFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.appointments.History(r.Context(), patientID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	})
}

func historyFilterFromQuery(r *http.Request) (repositories.HistoryFilter, error) {
	var filter repositories.HistoryFilter
	q := r.URL.Query()

	if fromStr := q.Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid from date format (use RFC3339)")
		}
		filter.From = &from
	}
	if toStr := q.Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid to date format (use RFC3339)")
		}
		filter.To = &to
	}
	if physicianID := q.Get("physician_id"); physicianID != "" {
		filter.PhysicianID = &physicianID
	}
	if specialtyID := q.Get("specialty_id"); specialtyID != "" {
		filter.SpecialtyID = &specialtyID
	}
	if status := q.Get("status"); status != "" {
		filter.Status = entities.AppointmentStatus(status)
	}

	return filter, nil
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy onto HTTP status codes
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Kind {
		case apperrors.KindNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.KindValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.KindBusinessRule:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.KindConstraint:
			respondWithError(w, http.StatusConflict, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
