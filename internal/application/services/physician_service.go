package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

// PhysicianService manages the physician reference entity. Uniqueness of
// the license id is enforced by storage and surfaces as a constraint
// violation.
type PhysicianService struct {
	physicians  repositories.PhysicianRepository
	specialties repositories.SpecialtyRepository
}

// NewPhysicianService creates a new physician service
func NewPhysicianService(physicians repositories.PhysicianRepository, specialties repositories.SpecialtyRepository) *PhysicianService {
	return &PhysicianService{physicians: physicians, specialties: specialties}
}

// Create registers a new physician
func (s *PhysicianService) Create(ctx context.Context, physician *entities.Physician) (*entities.Physician, error) {
	if err := s.validate(physician); err != nil {
		return nil, err
	}
	if _, err := s.specialties.GetByID(ctx, physician.SpecialtyID); err != nil {
		return nil, err
	}

	if physician.ID == "" {
		physician.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	physician.CreatedAt = now
	physician.UpdatedAt = now

	if err := s.physicians.Create(ctx, physician); err != nil {
		return nil, err
	}
	return physician, nil
}

// Update modifies an existing physician
func (s *PhysicianService) Update(ctx context.Context, physician *entities.Physician) (*entities.Physician, error) {
	if err := s.validate(physician); err != nil {
		return nil, err
	}
	exists, err := s.physicians.ExistsByID(ctx, physician.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("physician not found")
	}

	physician.UpdatedAt = time.Now().UTC()
	if err := s.physicians.Update(ctx, physician); err != nil {
		return nil, err
	}
	return physician, nil
}

// Get retrieves a physician by id
func (s *PhysicianService) Get(ctx context.Context, id string) (*entities.Physician, error) {
	return s.physicians.GetByID(ctx, id)
}

// List retrieves all physicians
func (s *PhysicianService) List(ctx context.Context) ([]*entities.Physician, error) {
	return s.physicians.List(ctx)
}

func (s *PhysicianService) validate(physician *entities.Physician) error {
	switch {
	case physician.Name == "":
		return apperrors.NewValidationError("physician name is required")
	case physician.LicenseID == "":
		return apperrors.NewValidationError("physician license id is required")
	case physician.SpecialtyID == "":
		return apperrors.NewValidationError("physician specialty is required")
	case physician.WorkStart >= physician.WorkEnd:
		return apperrors.NewValidationError("work-start must be before work-end")
	case physician.DefaultDurationMin <= 0:
		return apperrors.NewValidationError("default appointment duration must be positive")
	case physician.ReferencePrice.IsNegative():
		return apperrors.NewValidationError("reference price cannot be negative")
	}
	return nil
}
