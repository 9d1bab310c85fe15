package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// InsuranceService defines the interface for insurance plan management
type InsuranceService interface {
	Create(ctx context.Context, plan *entities.InsurancePlan) (*entities.InsurancePlan, error)
	Update(ctx context.Context, plan *entities.InsurancePlan) (*entities.InsurancePlan, error)
	Get(ctx context.Context, id string) (*entities.InsurancePlan, error)
	List(ctx context.Context) ([]*entities.InsurancePlan, error)
}

// InsuranceHandler handles insurance plan requests
type InsuranceHandler struct {
	service InsuranceService
}

// NewInsuranceHandler creates a new insurance handler
func NewInsuranceHandler(service InsuranceService) *InsuranceHandler {
	return &InsuranceHandler{
		service: service,
	}
}

// Create handles POST /api/insurance-plans
func (h *InsuranceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var plan entities.InsurancePlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := h.service.Create(r.Context(), &plan)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/insurance-plans/{id}
func (h *InsuranceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "insurance plan ID is required")
		return
	}

	var plan entities.InsurancePlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	plan.ID = id

	updated, err := h.service.Update(r.Context(), &plan)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// Get handles GET /api/insurance-plans/{id}
func (h *InsuranceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "insurance plan ID is required")
		return
	}

	plan, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, plan)
}

// List handles GET /api/insurance-plans
func (h *InsuranceHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"insurance_plans": plans,
		"count":           len(plans),
	})
}
