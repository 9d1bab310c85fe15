package repositories

import (
	"context"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// PatientRepository defines the storage contract for patients
type PatientRepository interface {
	Create(ctx context.Context, patient *entities.Patient) error
	GetByID(ctx context.Context, id string) (*entities.Patient, error)
	Update(ctx context.Context, patient *entities.Patient) error
	List(ctx context.Context) ([]*entities.Patient, error)
}

// ReceptionistRepository defines the storage contract for receptionists
type ReceptionistRepository interface {
	Create(ctx context.Context, receptionist *entities.Receptionist) error
	GetByID(ctx context.Context, id string) (*entities.Receptionist, error)
	Update(ctx context.Context, receptionist *entities.Receptionist) error
	List(ctx context.Context) ([]*entities.Receptionist, error)
}

// SpecialtyRepository defines the storage contract for specialties
type SpecialtyRepository interface {
	Create(ctx context.Context, specialty *entities.Specialty) error
	GetByID(ctx context.Context, id string) (*entities.Specialty, error)
	List(ctx context.Context) ([]*entities.Specialty, error)
}

// InsurancePlanRepository defines the storage contract for insurance plans
type InsurancePlanRepository interface {
	Create(ctx context.Context, plan *entities.InsurancePlan) error
	GetByID(ctx context.Context, id string) (*entities.InsurancePlan, error)
	Update(ctx context.Context, plan *entities.InsurancePlan) error
	List(ctx context.Context) ([]*entities.InsurancePlan, error)
}

// PaymentMethodRepository defines the storage contract for payment methods
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *entities.PaymentMethod) error
	GetByID(ctx context.Context, id string) (*entities.PaymentMethod, error)
	List(ctx context.Context) ([]*entities.PaymentMethod, error)
}
