package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
)

// Mocks shared by the service tests

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppointmentRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) ListByPhysicianWithin(ctx context.Context, physicianID string, from, to time.Time) ([]*entities.Appointment, error) {
	args := m.Called(ctx, physicianID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByPatient(ctx context.Context, patientID string, filter repositories.HistoryFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, patientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListCompletedWithin(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Replace(ctx context.Context, cancelled, replacement *entities.Appointment) error {
	args := m.Called(ctx, cancelled, replacement)
	return args.Error(0)
}

func (m *MockAppointmentRepository) CountCompletedByPhysician(ctx context.Context, year int, month time.Month) ([]repositories.PhysicianRankingRow, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.PhysicianRankingRow), args.Error(1)
}

type MockPhysicianRepository struct {
	mock.Mock
}

func (m *MockPhysicianRepository) Create(ctx context.Context, physician *entities.Physician) error {
	args := m.Called(ctx, physician)
	return args.Error(0)
}

func (m *MockPhysicianRepository) GetByID(ctx context.Context, id string) (*entities.Physician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Physician), args.Error(1)
}

func (m *MockPhysicianRepository) Update(ctx context.Context, physician *entities.Physician) error {
	args := m.Called(ctx, physician)
	return args.Error(0)
}

func (m *MockPhysicianRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPhysicianRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPhysicianRepository) List(ctx context.Context) ([]*entities.Physician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Physician), args.Error(1)
}

func (m *MockPhysicianRepository) ListActiveBySpecialty(ctx context.Context, specialtyID string) ([]*entities.Physician, error) {
	args := m.Called(ctx, specialtyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Physician), args.Error(1)
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, patient *entities.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context) ([]*entities.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

type MockReceptionistRepository struct {
	mock.Mock
}

func (m *MockReceptionistRepository) Create(ctx context.Context, receptionist *entities.Receptionist) error {
	args := m.Called(ctx, receptionist)
	return args.Error(0)
}

func (m *MockReceptionistRepository) GetByID(ctx context.Context, id string) (*entities.Receptionist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Receptionist), args.Error(1)
}

func (m *MockReceptionistRepository) Update(ctx context.Context, receptionist *entities.Receptionist) error {
	args := m.Called(ctx, receptionist)
	return args.Error(0)
}

func (m *MockReceptionistRepository) List(ctx context.Context) ([]*entities.Receptionist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Receptionist), args.Error(1)
}

type MockSpecialtyRepository struct {
	mock.Mock
}

func (m *MockSpecialtyRepository) Create(ctx context.Context, specialty *entities.Specialty) error {
	args := m.Called(ctx, specialty)
	return args.Error(0)
}

func (m *MockSpecialtyRepository) GetByID(ctx context.Context, id string) (*entities.Specialty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Specialty), args.Error(1)
}

func (m *MockSpecialtyRepository) List(ctx context.Context) ([]*entities.Specialty, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Specialty), args.Error(1)
}

type MockInsurancePlanRepository struct {
	mock.Mock
}

func (m *MockInsurancePlanRepository) Create(ctx context.Context, plan *entities.InsurancePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockInsurancePlanRepository) GetByID(ctx context.Context, id string) (*entities.InsurancePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InsurancePlan), args.Error(1)
}

func (m *MockInsurancePlanRepository) Update(ctx context.Context, plan *entities.InsurancePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockInsurancePlanRepository) List(ctx context.Context) ([]*entities.InsurancePlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InsurancePlan), args.Error(1)
}

type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, method *entities.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) GetByID(ctx context.Context, id string) (*entities.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) List(ctx context.Context) ([]*entities.PaymentMethod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentMethod), args.Error(1)
}

type MockSlotLocker struct {
	mock.Mock
}

func (m *MockSlotLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockSlotLocker) Release(ctx context.Context, key string, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}
