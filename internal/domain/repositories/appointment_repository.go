package repositories

import (
	"context"
	"time"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// AppointmentRepository defines the storage contract for appointments
type AppointmentRepository interface {
	// Create persists a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// Update persists changes to an existing appointment
	Update(ctx context.Context, appointment *entities.Appointment) error

	// Delete removes an appointment (administrative delete, distinct from
	// business cancellation)
	Delete(ctx context.Context, id string) error

	// ExistsByID reports whether an appointment exists
	ExistsByID(ctx context.Context, id string) (bool, error)

	// ListByPhysicianWithin retrieves a physician's appointments scheduled
	// in the half-open range [from, to)
	ListByPhysicianWithin(ctx context.Context, physicianID string, from, to time.Time) ([]*entities.Appointment, error)

	// ListByPatient retrieves a patient's appointments with optional filters
	ListByPatient(ctx context.Context, patientID string, filter HistoryFilter) ([]*entities.Appointment, error)

	// ListCompletedWithin retrieves completed appointments scheduled in
	// [from, to), ordered by schedule time
	ListCompletedWithin(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error)

	// Replace atomically persists a cancellation together with its
	// replacement appointment. Either both rows commit or neither does.
	Replace(ctx context.Context, cancelled, replacement *entities.Appointment) error

	// CountCompletedByPhysician aggregates completed appointments per
	// physician for one calendar month, most appointments first
	CountCompletedByPhysician(ctx context.Context, year int, month time.Month) ([]PhysicianRankingRow, error)
}

// HistoryFilter narrows a patient history lookup. Nil/zero fields match
// everything.
type HistoryFilter struct {
	From        *time.Time
	To          *time.Time
	PhysicianID *string
	SpecialtyID *string
	Status      entities.AppointmentStatus
}

// PhysicianRankingRow is one line of the monthly physician ranking
type PhysicianRankingRow struct {
	PhysicianID   string `json:"physician_id" db:"physician_id"`
	PhysicianName string `json:"physician_name" db:"physician_name"`
	Appointments  int    `json:"appointments" db:"appointments"`
}
