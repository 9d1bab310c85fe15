package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smartmed/consultas/internal/application/services"
	"github.com/smartmed/consultas/internal/domain/entities"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

type schedulerDeps struct {
	appointments   *MockAppointmentRepository
	physicians     *MockPhysicianRepository
	patients       *MockPatientRepository
	receptionists  *MockReceptionistRepository
	specialties    *MockSpecialtyRepository
	insurancePlans *MockInsurancePlanRepository
	paymentMethods *MockPaymentMethodRepository
	locker         *MockSlotLocker
}

func newSchedulerService(horizonMonths int) (*services.SchedulerService, *schedulerDeps) {
	deps := &schedulerDeps{
		appointments:   new(MockAppointmentRepository),
		physicians:     new(MockPhysicianRepository),
		patients:       new(MockPatientRepository),
		receptionists:  new(MockReceptionistRepository),
		specialties:    new(MockSpecialtyRepository),
		insurancePlans: new(MockInsurancePlanRepository),
		paymentMethods: new(MockPaymentMethodRepository),
		locker:         new(MockSlotLocker),
	}
	service := services.NewSchedulerService(
		deps.appointments,
		deps.physicians,
		deps.patients,
		deps.receptionists,
		deps.specialties,
		deps.insurancePlans,
		deps.paymentMethods,
		deps.locker,
		horizonMonths,
		10*time.Second,
	)
	return service, deps
}

// nextWeekdayAt returns the first future instance of the weekday at least a
// week out, at the given hour UTC.
func nextWeekdayAt(weekday time.Weekday, hour int) time.Time {
	t := time.Now().UTC().AddDate(0, 0, 7)
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, 1)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
}

func testPhysician(id string, workStart, workEnd entities.MinuteOfDay, defaultMin int, price string) *entities.Physician {
	return &entities.Physician{
		ID:                 id,
		Name:               "Dr. " + id,
		LicenseID:          "CRM-" + id,
		SpecialtyID:        "cardiology",
		ReferencePrice:     decimal.RequireFromString(price),
		Active:             true,
		WorkStart:          workStart,
		WorkEnd:            workEnd,
		DefaultDurationMin: defaultMin,
	}
}

func testPatient(id string) *entities.Patient {
	return &entities.Patient{ID: id, Name: "Patient " + id, Active: true}
}

func testReceptionist(id string, active bool) *entities.Receptionist {
	return &entities.Receptionist{ID: id, Name: "Receptionist " + id, Active: active}
}

func expectResolvedActors(deps *schedulerDeps) {
	deps.patients.On("GetByID", mock.Anything, "patient-1").Return(testPatient("patient-1"), nil)
	deps.receptionists.On("GetByID", mock.Anything, "recep-1").Return(testReceptionist("recep-1", true), nil)
	deps.specialties.On("GetByID", mock.Anything, "cardiology").Return(&entities.Specialty{ID: "cardiology", Name: "Cardiology"}, nil)
}

func TestSchedulerService_ScheduleAutomatically(t *testing.T) {
	t.Run("books the first slot after an existing booking", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		expectResolvedActors(deps)

		physician := testPhysician("phys-1", 8*60, 12*60, 60, "150.00")
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{physician}, nil)

		mondayEight := nextWeekdayAt(time.Monday, 8)
		existing := &entities.Appointment{
			ID:          "existing-1",
			ScheduledAt: mondayEight,
			Status:      entities.AppointmentStatusScheduled,
			PhysicianID: physician.ID,
		}

		deps.locker.On("Acquire", mock.Anything, "booking_lock:physician:phys-1", mock.Anything).Return("token-1", nil)
		deps.locker.On("Release", mock.Anything, "booking_lock:physician:phys-1", "token-1").Return(nil)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{existing}, nil)
		deps.appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.ScheduledAt.Equal(mondayEight.Add(time.Hour)) &&
				a.Status == entities.AppointmentStatusScheduled &&
				a.PhysicianID == "phys-1"
		})).Return(nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  mondayEight,
		})

		assert.NoError(t, err)
		assert.Equal(t, mondayEight.Add(time.Hour), appointment.ScheduledAt)
		assert.True(t, appointment.Value.Equal(decimal.RequireFromString("150.00")))
		deps.appointments.AssertExpectations(t)
		deps.locker.AssertExpectations(t)
	})

	t.Run("skips weekends", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		expectResolvedActors(deps)

		physician := testPhysician("phys-1", 8*60, 12*60, 60, "150.00")
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{physician}, nil)

		saturdayNine := nextWeekdayAt(time.Saturday, 9)
		mondayEight := nextWeekdayAt(time.Monday, 8)
		if !mondayEight.After(saturdayNine) {
			mondayEight = mondayEight.AddDate(0, 0, 7)
		}

		deps.locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return("token-1", nil)
		deps.locker.On("Release", mock.Anything, mock.Anything, "token-1").Return(nil)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{}, nil)
		deps.appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  saturdayNine,
		})

		assert.NoError(t, err)
		assert.Equal(t, mondayEight, appointment.ScheduledAt)
		assert.Equal(t, time.Monday, appointment.ScheduledAt.Weekday())
	})

	t.Run("applies the insurance plan discount", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		expectResolvedActors(deps)

		physician := testPhysician("phys-1", 8*60, 12*60, 60, "200.00")
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{physician}, nil)
		planID := "plan-1"
		deps.insurancePlans.On("GetByID", mock.Anything, planID).Return(&entities.InsurancePlan{
			ID:       planID,
			Name:     "HealthPlus",
			Discount: decimal.RequireFromString("0.5"),
			Active:   true,
		}, nil)

		deps.locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return("token-1", nil)
		deps.locker.On("Release", mock.Anything, mock.Anything, "token-1").Return(nil)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{}, nil)
		deps.appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:       "patient-1",
			SpecialtyID:     "cardiology",
			ReceptionistID:  "recep-1",
			EarliestStart:   nextWeekdayAt(time.Monday, 8),
			InsurancePlanID: &planID,
		})

		assert.NoError(t, err)
		assert.True(t, appointment.Value.Equal(decimal.RequireFromString("100.00")),
			"expected 100.00, got %s", appointment.Value)
	})

	t.Run("fails with business rule when the horizon is exhausted", func(t *testing.T) {
		service, deps := newSchedulerService(1)
		expectResolvedActors(deps)

		physician := testPhysician("phys-1", 8*60, 12*60, 60, "150.00")
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{physician}, nil)

		earliest := nextWeekdayAt(time.Monday, 8)
		blocking := &entities.Appointment{
			ID:          "blocking-1",
			ScheduledAt: earliest.AddDate(0, 0, -1),
			DurationMin: 60 * 24 * 40,
			Status:      entities.AppointmentStatusScheduled,
			PhysicianID: physician.ID,
		}

		deps.locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return("token-1", nil)
		deps.locker.On("Release", mock.Anything, mock.Anything, "token-1").Return(nil)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{blocking}, nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  earliest,
		})

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
		deps.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("tries physicians in the repository's price order", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		expectResolvedActors(deps)

		cheap := testPhysician("phys-cheap", 8*60, 12*60, 60, "100.00")
		expensive := testPhysician("phys-expensive", 8*60, 12*60, 60, "300.00")
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{cheap, expensive}, nil)

		deps.locker.On("Acquire", mock.Anything, "booking_lock:physician:phys-cheap", mock.Anything).Return("token-1", nil)
		deps.locker.On("Release", mock.Anything, "booking_lock:physician:phys-cheap", "token-1").Return(nil)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-cheap", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{}, nil)
		deps.appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  nextWeekdayAt(time.Monday, 8),
		})

		assert.NoError(t, err)
		assert.Equal(t, "phys-cheap", appointment.PhysicianID)
		deps.locker.AssertNumberOfCalls(t, "Acquire", 1)
	})

	t.Run("rejects an inactive receptionist", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		deps.patients.On("GetByID", mock.Anything, "patient-1").Return(testPatient("patient-1"), nil)
		deps.receptionists.On("GetByID", mock.Anything, "recep-1").Return(testReceptionist("recep-1", false), nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  nextWeekdayAt(time.Monday, 8),
		})

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
		deps.physicians.AssertNotCalled(t, "ListActiveBySpecialty", mock.Anything, mock.Anything)
	})

	t.Run("requires a specialty", func(t *testing.T) {
		service, deps := newSchedulerService(3)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			ReceptionistID: "recep-1",
			EarliestStart:  nextWeekdayAt(time.Monday, 8),
		})

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
		deps.patients.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("fails with not found when no physician serves the specialty", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		expectResolvedActors(deps)
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{}, nil)

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  nextWeekdayAt(time.Monday, 8),
		})

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("surfaces a lock acquisition failure as a storage error", func(t *testing.T) {
		service, deps := newSchedulerService(3)
		expectResolvedActors(deps)

		physician := testPhysician("phys-1", 8*60, 12*60, 60, "150.00")
		deps.physicians.On("ListActiveBySpecialty", mock.Anything, "cardiology").
			Return([]*entities.Physician{physician}, nil)
		deps.locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("lock is held by another booking"))

		appointment, err := service.ScheduleAutomatically(context.Background(), services.AutoScheduleRequest{
			PatientID:      "patient-1",
			SpecialtyID:    "cardiology",
			ReceptionistID: "recep-1",
			EarliestStart:  nextWeekdayAt(time.Monday, 8),
		})

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsKind(err, apperrors.KindStorage))
		deps.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSchedulerService_GetPhysicianAgenda(t *testing.T) {
	t.Run("splits the day into occupied and free slots", func(t *testing.T) {
		service, deps := newSchedulerService(3)

		physician := testPhysician("phys-1", 8*60, 10*60, 60, "150.00")
		deps.physicians.On("GetByID", mock.Anything, "phys-1").Return(physician, nil)

		day := nextWeekdayAt(time.Monday, 0)
		nine := day.Add(9 * time.Hour)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{{
				ID:          "appt-1",
				ScheduledAt: nine,
				Status:      entities.AppointmentStatusScheduled,
				PhysicianID: "phys-1",
			}}, nil)

		agenda, err := service.GetPhysicianAgenda(context.Background(), "phys-1", day)

		assert.NoError(t, err)
		assert.Equal(t, []string{"09:00"}, agenda.OccupiedSlots)
		assert.Equal(t, []string{"08:00"}, agenda.FreeSlots)
		assert.Equal(t, day.Format("2006-01-02"), agenda.Date)
	})

	t.Run("cancelled appointments do not occupy slots", func(t *testing.T) {
		service, deps := newSchedulerService(3)

		physician := testPhysician("phys-1", 8*60, 10*60, 60, "150.00")
		deps.physicians.On("GetByID", mock.Anything, "phys-1").Return(physician, nil)

		day := nextWeekdayAt(time.Monday, 0)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{{
				ID:          "appt-1",
				ScheduledAt: day.Add(9 * time.Hour),
				Status:      entities.AppointmentStatusCancelled,
				PhysicianID: "phys-1",
			}}, nil)

		agenda, err := service.GetPhysicianAgenda(context.Background(), "phys-1", day)

		assert.NoError(t, err)
		assert.Empty(t, agenda.OccupiedSlots)
		assert.Equal(t, []string{"08:00", "09:00"}, agenda.FreeSlots)
	})

	t.Run("drops free slots that already ended but keeps occupied ones", func(t *testing.T) {
		service, deps := newSchedulerService(3)

		physician := testPhysician("phys-1", 8*60, 10*60, 60, "150.00")
		deps.physicians.On("GetByID", mock.Anything, "phys-1").Return(physician, nil)

		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		dayStart := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
		deps.appointments.On("ListByPhysicianWithin", mock.Anything, "phys-1", mock.Anything, mock.Anything).
			Return([]*entities.Appointment{{
				ID:          "appt-1",
				ScheduledAt: dayStart.Add(9 * time.Hour),
				Status:      entities.AppointmentStatusScheduled,
				PhysicianID: "phys-1",
			}}, nil)

		agenda, err := service.GetPhysicianAgenda(context.Background(), "phys-1", yesterday)

		assert.NoError(t, err)
		assert.Equal(t, []string{"09:00"}, agenda.OccupiedSlots)
		assert.Empty(t, agenda.FreeSlots)
	})

	t.Run("rejects an inactive physician", func(t *testing.T) {
		service, deps := newSchedulerService(3)

		physician := testPhysician("phys-1", 8*60, 10*60, 60, "150.00")
		physician.Active = false
		deps.physicians.On("GetByID", mock.Anything, "phys-1").Return(physician, nil)

		agenda, err := service.GetPhysicianAgenda(context.Background(), "phys-1", nextWeekdayAt(time.Monday, 0))

		assert.Nil(t, agenda)
		assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
	})
}
