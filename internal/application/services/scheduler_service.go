package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/providers"
	"github.com/smartmed/consultas/internal/domain/repositories"
	"github.com/smartmed/consultas/internal/domain/scheduling"
	"github.com/smartmed/consultas/internal/infrastructure/observability"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

// SchedulerService finds and books the first conflict-free slot for a new
// appointment, and renders physician agendas.
type SchedulerService struct {
	appointments   repositories.AppointmentRepository
	physicians     repositories.PhysicianRepository
	patients       repositories.PatientRepository
	receptionists  repositories.ReceptionistRepository
	specialties    repositories.SpecialtyRepository
	insurancePlans repositories.InsurancePlanRepository
	paymentMethods repositories.PaymentMethodRepository
	locker         providers.SlotLocker
	horizonMonths  int
	lockTTL        time.Duration
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	appointments repositories.AppointmentRepository,
	physicians repositories.PhysicianRepository,
	patients repositories.PatientRepository,
	receptionists repositories.ReceptionistRepository,
	specialties repositories.SpecialtyRepository,
	insurancePlans repositories.InsurancePlanRepository,
	paymentMethods repositories.PaymentMethodRepository,
	locker providers.SlotLocker,
	horizonMonths int,
	lockTTL time.Duration,
) *SchedulerService {
	if horizonMonths <= 0 {
		horizonMonths = 3
	}
	return &SchedulerService{
		appointments:   appointments,
		physicians:     physicians,
		patients:       patients,
		receptionists:  receptionists,
		specialties:    specialties,
		insurancePlans: insurancePlans,
		paymentMethods: paymentMethods,
		locker:         locker,
		horizonMonths:  horizonMonths,
		lockTTL:        lockTTL,
	}
}

// AutoScheduleRequest carries the criteria for automatic scheduling
type AutoScheduleRequest struct {
	PatientID       string    `json:"patient_id"`
	SpecialtyID     string    `json:"specialty_id"`
	ReceptionistID  string    `json:"receptionist_id"`
	EarliestStart   time.Time `json:"earliest_start"`
	DurationMin     *int      `json:"duration_min,omitempty"`
	InsurancePlanID *string   `json:"insurance_plan_id,omitempty"`
	PaymentMethodID *string   `json:"payment_method_id,omitempty"`
}

// ScheduleAutomatically books the first conflict-free slot within the
// search horizon. Physicians are tried cheapest reference price first (the
// repository's documented order); within a physician, candidate slots
// advance from the earliest start, skipping weekends and out-of-hours
// slots. Exactly one appointment is persisted on success, none on failure.
func (s *SchedulerService) ScheduleAutomatically(ctx context.Context, req AutoScheduleRequest) (*entities.Appointment, error) {
	logger := observability.LoggerFromContext(ctx)

	if req.SpecialtyID == "" {
		return nil, apperrors.NewBusinessRuleError("a specialty is required for automatic scheduling")
	}
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

	if _, err := s.specialties.GetByID(ctx, req.SpecialtyID); err != nil {
		return nil, err
	}
	eligible, err := s.physicians.ListActiveBySpecialty(ctx, req.SpecialtyID)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no active physician found for specialty %s", req.SpecialtyID))
	}

	horizon := req.EarliestStart.AddDate(0, s.horizonMonths, 0)

	for _, physician := range eligible {
		appointment, err := s.bookFirstFreeSlot(ctx, physician, patient, receptionist, plan, req, horizon)
		if err != nil {
			return nil, err
		}
		if appointment != nil {
			logger.Info().
				Str("appointment_id", appointment.ID).
				Str("physician_id", physician.ID).
				Time("scheduled_at", appointment.ScheduledAt).
				Msg("automatic scheduling booked a slot")
			return appointment, nil
		}
	}

	logger.Warn().
		Str("specialty_id", req.SpecialtyID).
		Time("horizon", horizon).
		Msg("automatic scheduling found no availability")
	return nil, apperrors.NewBusinessRuleError("no availability found within the search horizon for the given criteria")
}

// bookFirstFreeSlot walks one physician's candidate slots up to the
// horizon and books the first free one. The physician's booking lock is
// held across the availability check and the insert; without it two
// concurrent calls could both observe the slot as free.
func (s *SchedulerService) bookFirstFreeSlot(
	ctx context.Context,
	physician *entities.Physician,
	patient *entities.Patient,
	receptionist *entities.Receptionist,
	plan *entities.InsurancePlan,
	req AutoScheduleRequest,
	horizon time.Time,
) (*entities.Appointment, error) {
	token, err := s.locker.Acquire(ctx, physicianLockKey(physician.ID), s.lockTTL)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to acquire physician booking lock", err)
	}
	defer func() {
		if err := s.locker.Release(ctx, physicianLockKey(physician.ID), token); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to release physician booking lock")
		}
	}()

	slot := physician.DefaultDuration()
	durationMin := 0
	if req.DurationMin != nil {
		durationMin = *req.DurationMin
		slot = time.Duration(durationMin) * time.Minute
	}
	buffer := physician.DefaultDuration()

	cur := req.EarliestStart
	for cur.Before(horizon) {
		if wd := cur.Weekday(); wd == time.Saturday || wd == time.Sunday {
			cur = nextWorkDayStart(cur, physician.WorkStart)
			continue
		}
		if entities.MinuteOf(cur) < physician.WorkStart {
			cur = physician.WorkStart.At(cur)
		}
		slotEnd := cur.Add(slot)
		if int(entities.MinuteOf(cur))+int(slot.Minutes()) > int(physician.WorkEnd) {
			cur = nextWorkDayStart(cur, physician.WorkStart)
			continue
		}

		// Probe a window one default duration wider than the slot on each
		// side so neighbours with longer durations are not missed.
		neighbours, err := s.appointments.ListByPhysicianWithin(ctx, physician.ID, cur.Add(-buffer), slotEnd.Add(buffer))
		if err != nil {
			return nil, err
		}

		booked := scheduling.BookedIntervals(neighbours, physician.DefaultDurationMin, "")
		if !scheduling.HasConflict(scheduling.Interval{Start: cur, End: slotEnd}, booked) {
			now := time.Now().UTC()
			appointment := &entities.Appointment{
				ID:              uuid.New().String(),
				ScheduledAt:     cur,
				DurationMin:     durationMin,
				Status:          entities.AppointmentStatusScheduled,
				Value:           scheduling.Price(physician.ReferencePrice, plan, entities.AppointmentStatusScheduled),
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

		cur = cur.Add(slot)
	}

	return nil, nil
}

// PhysicianAgenda is a physician's day split into occupied and free slots
type PhysicianAgenda struct {
	Physician     string   `json:"physician"`
	Date          string   `json:"date"`
	OccupiedSlots []string `json:"occupied_slots"`
	FreeSlots     []string `json:"free_slots"`
}

// GetPhysicianAgenda renders a physician's agenda for one calendar date.
// Free slots that already ended are omitted.
func (s *SchedulerService) GetPhysicianAgenda(ctx context.Context, physicianID string, date time.Time) (*PhysicianAgenda, error) {
	physician, err := s.physicians.GetByID(ctx, physicianID)
	if err != nil {
		return nil, err
	}
	if !physician.Active {
		return nil, apperrors.NewBusinessRuleError("physician is inactive and has no agenda")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, err := s.appointments.ListByPhysicianWithin(ctx, physicianID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	booked := scheduling.BookedIntervals(appointments, physician.DefaultDurationMin, "")

	agenda := &PhysicianAgenda{
		Physician:     physician.Name,
		Date:          dayStart.Format("2006-01-02"),
		OccupiedSlots: []string{},
		FreeSlots:     []string{},
	}

	now := time.Now().UTC()
	slot := physician.DefaultDuration()
	for start := range scheduling.Slots(dayStart, physician.WorkStart, physician.WorkEnd, slot) {
		end := start.Add(slot)
		label := entities.MinuteOf(start).String()
		switch {
		case scheduling.HasConflict(scheduling.Interval{Start: start, End: end}, booked):
			agenda.OccupiedSlots = append(agenda.OccupiedSlots, label)
		case end.Before(now):
			// A free slot that already ended is not offerable.
		default:
			agenda.FreeSlots = append(agenda.FreeSlots, label)
		}
	}

	return agenda, nil
}

func physicianLockKey(physicianID string) string {
	return fmt.Sprintf("booking_lock:physician:%s", physicianID)
}

// nextWorkDayStart moves to work-start on the calendar day after t.
func nextWorkDayStart(t time.Time, workStart entities.MinuteOfDay) time.Time {
	return workStart.At(t.AddDate(0, 0, 1))
}
