package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/smartmed/consultas/internal/application/services"
	"github.com/smartmed/consultas/internal/domain/repositories"
)

// ReportService defines the interface for reporting operations
type ReportService interface {
	Billing(ctx context.Context, from, to time.Time) (*services.BillingReport, error)
	PhysicianRanking(ctx context.Context, year int, month time.Month) ([]repositories.PhysicianRankingRow, error)
}

// ReportHandler handles report requests
type ReportHandler struct {
	service ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// Billing handles GET /api/reports/billing
func (h *ReportHandler) Billing(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		respondWithError(w, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid from date format (use YYYY-MM-DD)")
		return
	}

	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid to date format (use YYYY-MM-DD)")
		return
	}

	report, err := h.service.Billing(r.Context(), from, to)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// PhysicianRanking handles GET /api/reports/physician-ranking
func (h *ReportHandler) PhysicianRanking(w http.ResponseWriter, r *http.Request) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" || monthStr == "" {
		respondWithError(w, http.StatusBadRequest, "year and month query parameters are required")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid year")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid month")
		return
	}

	ranking, err := h.service.PhysicianRanking(r.Context(), year, time.Month(month))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ranking": ranking,
		"count":   len(ranking),
	})
}
