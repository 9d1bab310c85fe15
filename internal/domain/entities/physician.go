package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Physician represents a physician and their working-day parameters.
// Invariants: WorkStart < WorkEnd, DefaultDurationMin > 0, LicenseID unique.
type Physician struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	LicenseID          string          `json:"license_id" db:"license_id"`
	Phone              string          `json:"phone" db:"phone"`
	Email              string          `json:"email" db:"email"`
	SpecialtyID        string          `json:"specialty_id" db:"specialty_id"`
	ReferencePrice     decimal.Decimal `json:"reference_price" db:"reference_price"`
	Active             bool            `json:"active" db:"active"`
	WorkStart          MinuteOfDay     `json:"work_start" db:"work_start_min"`
	WorkEnd            MinuteOfDay     `json:"work_end" db:"work_end_min"`
	DefaultDurationMin int             `json:"default_duration_min" db:"default_duration_min"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultDuration returns the physician's default slot length.
func (p *Physician) DefaultDuration() time.Duration {
	return time.Duration(p.DefaultDurationMin) * time.Minute
}
