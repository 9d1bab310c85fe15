package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment represents a booked consultation. All cross-entity links are
// identifiers resolved through repositories, never embedded objects.
type Appointment struct {
	ID          string            `json:"id" db:"id"`
	ScheduledAt time.Time         `json:"scheduled_at" db:"scheduled_at"`
	// DurationMin is the booked slot length. Zero means the physician's
	// default duration applies.
	DurationMin     int               `json:"duration_min" db:"duration_min"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Value           decimal.Decimal   `json:"value" db:"value"`
	Notes           string            `json:"notes" db:"notes"`
	PatientID       string            `json:"patient_id" db:"patient_id"`
	PhysicianID     string            `json:"physician_id" db:"physician_id"`
	ReceptionistID  string            `json:"receptionist_id" db:"receptionist_id"`
	PaymentMethodID *string           `json:"payment_method_id,omitempty" db:"payment_method_id"`
	InsurancePlanID *string           `json:"insurance_plan_id,omitempty" db:"insurance_plan_id"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// Duration returns the booked slot length, falling back to the physician
// default when the appointment did not record its own.
func (a *Appointment) Duration(physicianDefaultMin int) time.Duration {
	if a.DurationMin > 0 {
		return time.Duration(a.DurationMin) * time.Minute
	}
	return time.Duration(physicianDefaultMin) * time.Minute
}

// End returns the appointment's end instant under the given default duration.
func (a *Appointment) End(physicianDefaultMin int) time.Time {
	return a.ScheduledAt.Add(a.Duration(physicianDefaultMin))
}
