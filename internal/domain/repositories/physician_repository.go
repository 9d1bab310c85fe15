package repositories

import (
	"context"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// PhysicianRepository defines the storage contract for physicians
type PhysicianRepository interface {
	// Create persists a new physician
	Create(ctx context.Context, physician *entities.Physician) error

	// GetByID retrieves a physician by ID
	GetByID(ctx context.Context, id string) (*entities.Physician, error)

	// Update persists changes to an existing physician
	Update(ctx context.Context, physician *entities.Physician) error

	// Delete removes a physician
	Delete(ctx context.Context, id string) error

	// ExistsByID reports whether a physician exists
	ExistsByID(ctx context.Context, id string) (bool, error)

	// List retrieves all physicians
	List(ctx context.Context) ([]*entities.Physician, error)

	// ListActiveBySpecialty retrieves the active physicians of a specialty.
	// The order is the selection order for automatic scheduling: cheapest
	// reference price first, id as the tie-break.
	ListActiveBySpecialty(ctx context.Context, specialtyID string) ([]*entities.Physician, error)
}
