package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

// InsuranceService manages insurance plans. Name and tax id uniqueness is
// enforced by storage and surfaces as a constraint violation.
type InsuranceService struct {
	plans repositories.InsurancePlanRepository
}

// NewInsuranceService creates a new insurance service
func NewInsuranceService(plans repositories.InsurancePlanRepository) *InsuranceService {
	return &InsuranceService{plans: plans}
}

// Create registers a new insurance plan
func (s *InsuranceService) Create(ctx context.Context, plan *entities.InsurancePlan) (*entities.InsurancePlan, error) {
	if err := s.validate(plan); err != nil {
		return nil, err
	}

	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Update modifies an existing insurance plan
func (s *InsuranceService) Update(ctx context.Context, plan *entities.InsurancePlan) (*entities.InsurancePlan, error) {
	if err := s.validate(plan); err != nil {
		return nil, err
	}
	if _, err := s.plans.GetByID(ctx, plan.ID); err != nil {
		return nil, err
	}

	plan.UpdatedAt = time.Now().UTC()
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Get retrieves an insurance plan by id
func (s *InsuranceService) Get(ctx context.Context, id string) (*entities.InsurancePlan, error) {
	return s.plans.GetByID(ctx, id)
}

// List retrieves all insurance plans
func (s *InsuranceService) List(ctx context.Context) ([]*entities.InsurancePlan, error) {
	return s.plans.List(ctx)
}

func (s *InsuranceService) validate(plan *entities.InsurancePlan) error {
	one := decimal.NewFromInt(1)
	switch {
	case plan.Name == "":
		return apperrors.NewValidationError("insurance plan name is required")
	case plan.TaxID == "":
		return apperrors.NewValidationError("insurance plan tax id is required")
	case plan.Discount.IsNegative() || plan.Discount.GreaterThan(one):
		return apperrors.NewValidationError("discount fraction must be between 0 and 1")
	}
	return nil
}
