package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/providers"
	"github.com/smartmed/consultas/internal/domain/repositories"
	"github.com/smartmed/consultas/internal/domain/scheduling"
	"github.com/smartmed/consultas/internal/infrastructure/observability"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

const auditTimeLayout = "2006-01-02 15:04"

// AppointmentService governs the appointment lifecycle: booking at an
// explicit slot, cancellation, rescheduling and patient history.
type AppointmentService struct {
	appointments   repositories.AppointmentRepository
	physicians     repositories.PhysicianRepository
	patients       repositories.PatientRepository
	receptionists  repositories.ReceptionistRepository
	specialties    repositories.SpecialtyRepository
	insurancePlans repositories.InsurancePlanRepository
	paymentMethods repositories.PaymentMethodRepository
	locker         providers.SlotLocker
	leadTime       time.Duration
	lockTTL        time.Duration
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointments repositories.AppointmentRepository,
	physicians repositories.PhysicianRepository,
	patients repositories.PatientRepository,
	receptionists repositories.ReceptionistRepository,
	specialties repositories.SpecialtyRepository,
	insurancePlans repositories.InsurancePlanRepository,
	paymentMethods repositories.PaymentMethodRepository,
	locker providers.SlotLocker,
	leadTime time.Duration,
	lockTTL time.Duration,
) *AppointmentService {
	if leadTime <= 0 {
		leadTime = time.Hour
	}
	return &AppointmentService{
		appointments:   appointments,
		physicians:     physicians,
		patients:       patients,
		receptionists:  receptionists,
		specialties:    specialties,
		insurancePlans: insurancePlans,
		paymentMethods: paymentMethods,
		locker:         locker,
		leadTime:       leadTime,
		lockTTL:        lockTTL,
	}
}

// BookRequest carries the data for booking at an explicit slot
type BookRequest struct {
	PatientID       string    `json:"patient_id"`
	PhysicianID     string    `json:"physician_id"`
	ReceptionistID  string    `json:"receptionist_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMin     *int      `json:"duration_min,omitempty"`
	InsurancePlanID *string   `json:"insurance_plan_id,omitempty"`
	PaymentMethodID *string   `json:"payment_method_id,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// Book creates an appointment at an explicitly requested slot after
// verifying the physician has no overlapping booking.
func (s *AppointmentService) Book(ctx context.Context, req BookRequest) (*entities.Appointment, error) {
	if req.DurationMin != nil && *req.DurationMin <= 0 {
		return nil, apperrors.NewValidationError("requested duration must be positive")
	}

	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	receptionist, err := s.receptionists.GetByID(ctx, req.ReceptionistID)
	if err != nil {
		return nil, err
	}
	if !receptionist.Active {
		return nil, apperrors.NewBusinessRuleError("receptionist is inactive and cannot schedule appointments")
	}

	physician, err := s.physicians.GetByID(ctx, req.PhysicianID)
	if err != nil {
		return nil, err
	}
	if !physician.Active {
		return nil, apperrors.NewBusinessRuleError("physician is inactive and cannot receive appointments")
	}

	if req.PaymentMethodID != nil {
		if _, err := s.paymentMethods.GetByID(ctx, *req.PaymentMethodID); err != nil {
			return nil, err
		}
	}
	var plan *entities.InsurancePlan
	if req.InsurancePlanID != nil {
		plan, err = s.insurancePlans.GetByID(ctx, *req.InsurancePlanID)
		if err != nil {
			return nil, err
		}
	}

	durationMin := 0
	slot := physician.DefaultDuration()
	if req.DurationMin != nil {
		durationMin = *req.DurationMin
		slot = time.Duration(durationMin) * time.Minute
	}
	start := req.ScheduledAt
	end := start.Add(slot)

	token, err := s.locker.Acquire(ctx, physicianLockKey(physician.ID), s.lockTTL)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to acquire physician booking lock", err)
	}
	defer s.releaseLock(ctx, physician.ID, token)

	// Probe a window one default duration wider than the slot on each
	// side so neighbours with longer durations are not missed.
	buffer := physician.DefaultDuration()
	neighbours, err := s.appointments.ListByPhysicianWithin(ctx, physician.ID, start.Add(-buffer), end.Add(buffer))
	if err != nil {
		return nil, err
	}
	booked := scheduling.BookedIntervals(neighbours, physician.DefaultDurationMin, "")
	if scheduling.HasConflict(scheduling.Interval{Start: start, End: end}, booked) {
		return nil, apperrors.NewBusinessRuleError("the physician already has an appointment in this slot")
	}

	now := time.Now().UTC()
	appointment := &entities.Appointment{
		ID:              uuid.New().String(),
		ScheduledAt:     start,
		DurationMin:     durationMin,
		Status:          entities.AppointmentStatusScheduled,
		Value:           scheduling.Price(physician.ReferencePrice, plan, entities.AppointmentStatusScheduled),
		Notes:           req.Notes,
		PatientID:       patient.ID,
		PhysicianID:     physician.ID,
		ReceptionistID:  receptionist.ID,
		PaymentMethodID: req.PaymentMethodID,
		InsurancePlanID: req.InsurancePlanID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Get retrieves an appointment by id
func (s *AppointmentService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Cancel cancels a SCHEDULED future appointment, recording the reason and
// recomputing its value for the cancelled state.
func (s *AppointmentService) Cancel(ctx context.Context, id, reason string) (*entities.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appointment.Status != entities.AppointmentStatusScheduled {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf("appointment %s cannot be cancelled: status is %s", id, appointment.Status))
	}
	if appointment.ScheduledAt.Before(time.Now().UTC()) {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf("appointment %s cannot be cancelled: its time has already passed", id))
	}

	value, err := s.priceFor(ctx, appointment.PhysicianID, appointment.InsurancePlanID, entities.AppointmentStatusCancelled)
	if err != nil {
		return nil, err
	}

	appointment.Status = entities.AppointmentStatusCancelled
	appointment.Notes = reason
	appointment.Value = value
	appointment.UpdatedAt = time.Now().UTC()

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", id).
		Msg("appointment cancelled")
	return appointment, nil
}

// RescheduleResult reports a successful reschedule
type RescheduleResult struct {
	Message       string    `json:"message"`
	AppointmentID string    `json:"appointment_id"`
	NewTime       time.Time `json:"new_time"`
}

// Reschedule moves a SCHEDULED future appointment to a new time at least
// one lead-time ahead of now. The original is cancelled with an audit note
// and a replacement is created; the two writes commit atomically, so a
// failure leaves the original untouched.
func (s *AppointmentService) Reschedule(ctx context.Context, id string, newTime time.Time, reason string) (*RescheduleResult, error) {
	original, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if original.Status != entities.AppointmentStatusScheduled {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf("appointment %s cannot be rescheduled: status is %s", id, original.Status))
	}
	now := time.Now().UTC()
	if original.ScheduledAt.Before(now) {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf("appointment %s has already taken place and cannot be rescheduled", id))
	}
	if newTime.Before(now.Add(s.leadTime)) {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf("rescheduling requires at least %s of lead time", s.leadTime))
	}

	physician, err := s.physicians.GetByID(ctx, original.PhysicianID)
	if err != nil {
		return nil, err
	}
	var plan *entities.InsurancePlan
	if original.InsurancePlanID != nil {
		plan, err = s.insurancePlans.GetByID(ctx, *original.InsurancePlanID)
		if err != nil {
			return nil, err
		}
	}

	slot := original.Duration(physician.DefaultDurationMin)
	newEnd := newTime.Add(slot)
	buffer := physician.DefaultDuration()

	token, err := s.locker.Acquire(ctx, physicianLockKey(physician.ID), s.lockTTL)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to acquire physician booking lock", err)
	}
	defer s.releaseLock(ctx, physician.ID, token)

	neighbours, err := s.appointments.ListByPhysicianWithin(ctx, physician.ID, newTime.Add(-buffer), newEnd.Add(buffer))
	if err != nil {
		return nil, err
	}
	booked := scheduling.BookedIntervals(neighbours, physician.DefaultDurationMin, original.ID)
	if scheduling.HasConflict(scheduling.Interval{Start: newTime, End: newEnd}, booked) {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf("the slot at %s is already booked for physician %s", newTime.Format(auditTimeLayout), physician.Name))
	}

	cancelled := *original
	cancelled.Status = entities.AppointmentStatusCancelled
	cancelled.Notes = fmt.Sprintf("Rescheduled to %s. Reason: %s", newTime.Format(auditTimeLayout), reason)
	cancelled.Value = scheduling.Price(physician.ReferencePrice, plan, entities.AppointmentStatusCancelled)
	cancelled.UpdatedAt = now

	replacement := &entities.Appointment{
		ID:              uuid.New().String(),
		ScheduledAt:     newTime,
		DurationMin:     original.DurationMin,
		Status:          entities.AppointmentStatusScheduled,
		Value:           scheduling.Price(physician.ReferencePrice, plan, entities.AppointmentStatusScheduled),
		Notes:           fmt.Sprintf("Rescheduled from appointment %s. Reason: %s", original.ID, reason),
		PatientID:       original.PatientID,
		PhysicianID:     original.PhysicianID,
		ReceptionistID:  original.ReceptionistID,
		PaymentMethodID: original.PaymentMethodID,
		InsurancePlanID: original.InsurancePlanID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.appointments.Replace(ctx, &cancelled, replacement); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("original_id", original.ID).
		Str("replacement_id", replacement.ID).
		Time("new_time", newTime).
		Msg("appointment rescheduled")

	return &RescheduleResult{
		Message:       "appointment rescheduled successfully",
		AppointmentID: replacement.ID,
		NewTime:       newTime,
	}, nil
}

// Delete removes an appointment outright. This is the administrative
// delete; business flows cancel instead.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	exists, err := s.appointments.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", id))
	}
	return s.appointments.Delete(ctx, id)
}

// HistoryEntry is one line of a patient's appointment history
type HistoryEntry struct {
	ScheduledAt time.Time                  `json:"scheduled_at"`
	Physician   string                     `json:"physician"`
	Specialty   string                     `json:"specialty"`
	Value       decimal.Decimal            `json:"value"`
	Status      entities.AppointmentStatus `json:"status"`
	Notes       string                     `json:"notes"`
}

// History returns a patient's appointment history with optional filters.
// The patient must exist and be active.
func (s *AppointmentService) History(ctx context.Context, patientID string, filter repositories.HistoryFilter) ([]HistoryEntry, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !patient.Active {
		return nil, apperrors.NewBusinessRuleError("patient is inactive")
	}

	appointments, err := s.appointments.ListByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, err
	}

	physicianNames := map[string]string{}
	specialtyNames := map[string]string{}

	entries := make([]HistoryEntry, 0, len(appointments))
	for _, a := range appointments {
		physicianName, ok := physicianNames[a.PhysicianID]
		specialtyName := specialtyNames[a.PhysicianID]
		if !ok {
			physician, err := s.physicians.GetByID(ctx, a.PhysicianID)
			if err != nil {
				return nil, err
			}
			specialty, err := s.specialties.GetByID(ctx, physician.SpecialtyID)
			if err != nil {
				return nil, err
			}
			physicianName = physician.Name
			specialtyName = specialty.Name
			physicianNames[a.PhysicianID] = physicianName
			specialtyNames[a.PhysicianID] = specialtyName
		}
		entries = append(entries, HistoryEntry{
			ScheduledAt: a.ScheduledAt,
			Physician:   physicianName,
			Specialty:   specialtyName,
			Value:       a.Value,
			Status:      a.Status,
			Notes:       a.Notes,
		})
	}
	return entries, nil
}

// priceFor recomputes an appointment's value from its physician's
// reference price and optional insurance plan.
func (s *AppointmentService) priceFor(ctx context.Context, physicianID string, insurancePlanID *string, status entities.AppointmentStatus) (decimal.Decimal, error) {
	physician, err := s.physicians.GetByID(ctx, physicianID)
	if err != nil {
		return decimal.Zero, err
	}
	var plan *entities.InsurancePlan
	if insurancePlanID != nil {
		plan, err = s.insurancePlans.GetByID(ctx, *insurancePlanID)
		if err != nil {
			return decimal.Zero, err
		}
	}
	return scheduling.Price(physician.ReferencePrice, plan, status), nil
}

func (s *AppointmentService) releaseLock(ctx context.Context, physicianID, token string) {
	if err := s.locker.Release(ctx, physicianLockKey(physicianID), token); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to release physician booking lock")
	}
}
