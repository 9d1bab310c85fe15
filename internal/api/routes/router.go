package routes

import (
	"net/http"

	"github.com/smartmed/consultas/internal/api/handlers"
	"github.com/smartmed/consultas/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	appointmentHandler *handlers.AppointmentHandler
	physicianHandler   *handlers.PhysicianHandler
	insuranceHandler   *handlers.InsuranceHandler
	reportHandler      *handlers.ReportHandler
}

// NewRouter creates a new router
func NewRouter(
	appointmentHandler *handlers.AppointmentHandler,
	physicianHandler *handlers.PhysicianHandler,
	insuranceHandler *handlers.InsuranceHandler,
	reportHandler *handlers.ReportHandler,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		appointmentHandler: appointmentHandler,
		physicianHandler:   physicianHandler,
		insuranceHandler:   insuranceHandler,
		reportHandler:      reportHandler,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.Book)
	r.mux.HandleFunc("POST /api/appointments/auto", r.appointmentHandler.ScheduleAutomatically)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.appointmentHandler.Get)
	r.mux.HandleFunc("POST /api/appointments/{id}/cancel", r.appointmentHandler.Cancel)
	r.mux.HandleFunc("POST /api/appointments/{id}/reschedule", r.appointmentHandler.Reschedule)
	r.mux.HandleFunc("DELETE /api/appointments/{id}", r.appointmentHandler.Delete)

	// Patient history
	r.mux.HandleFunc("GET /api/patients/{id}/history", r.appointmentHandler.History)

	// Physician endpoints
	r.mux.HandleFunc("GET /api/physicians", r.physicianHandler.List)
	r.mux.HandleFunc("POST /api/physicians", r.physicianHandler.Create)
	r.mux.HandleFunc("GET /api/physicians/{id}", r.physicianHandler.Get)
	r.mux.HandleFunc("PUT /api/physicians/{id}", r.physicianHandler.Update)
	r.mux.HandleFunc("GET /api/physicians/{id}/agenda", r.physicianHandler.GetAgenda)

	// Insurance plan endpoints
	r.mux.HandleFunc("GET /api/insurance-plans", r.insuranceHandler.List)
	r.mux.HandleFunc("POST /api/insurance-plans", r.insuranceHandler.Create)
	r.mux.HandleFunc("GET /api/insurance-plans/{id}", r.insuranceHandler.Get)
	r.mux.HandleFunc("PUT /api/insurance-plans/{id}", r.insuranceHandler.Update)

	// Report endpoints
	r.mux.HandleFunc("GET /api/reports/billing", r.reportHandler.Billing)
	r.mux.HandleFunc("GET /api/reports/physician-ranking", r.reportHandler.PhysicianRanking)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
