package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartmed/consultas/internal/application/services"
	"github.com/smartmed/consultas/internal/domain/entities"
)

// PhysicianService defines the interface for physician management
type PhysicianService interface {
	Create(ctx context.Context, physician *entities.Physician) (*entities.Physician, error)
	Update(ctx context.Context, physician *entities.Physician) (*entities.Physician, error)
	Get(ctx context.Context, id string) (*entities.Physician, error)
	List(ctx context.Context) ([]*entities.Physician, error)
}

// AgendaService defines the interface for agenda rendering
type AgendaService interface {
	GetPhysicianAgenda(ctx context.Context, physicianID string, date time.Time) (*services.PhysicianAgenda, error)
}

// PhysicianHandler handles physician requests
type PhysicianHandler struct {
	physicians PhysicianService
	agenda     AgendaService
}

// NewPhysicianHandler creates a new physician handler
func NewPhysicianHandler(physicians PhysicianService, agenda AgendaService) *PhysicianHandler {
	return &PhysicianHandler{
		physicians: physicians,
		agenda:     agenda,
	}
}

// Create handles POST /api/physicians
func (h *PhysicianHandler) Create(w http.ResponseWriter, r *http.Request) {
	var physician entities.Physician
	if err := json.NewDecoder(r.Body).Decode(&physician); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := h.physicians.Create(r.Context(), &physician)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/physicians/{id}
func (h *PhysicianHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "physician ID is required")
		return
	}

	var physician entities.Physician
	if err := json.NewDecoder(r.Body).Decode(&physician); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	physician.ID = id

	updated, err := h.physicians.Update(r.Context(), &physician)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// Get handles GET /api/physicians/{id}
func (h *PhysicianHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "physician ID is required")
		return
	}

	physician, err := h.physicians.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, physician)
}

// List handles GET /api/physicians
func (h *PhysicianHandler) List(w http.ResponseWriter, r *http.Request) {
	physicians, err := h.physicians.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"physicians": physicians,
		"count":      len(physicians),
	})
}

// GetAgenda handles GET /api/physicians/{id}/agenda
func (h *PhysicianHandler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "physician ID is required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	agenda, err := h.agenda.GetPhysicianAgenda(r.Context(), id, date)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, agenda)
}
