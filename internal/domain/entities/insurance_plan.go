package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsurancePlan represents an insurance agreement carrying a discount
// fraction in [0,1] applied to a physician's reference price.
type InsurancePlan struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	TaxID     string          `json:"tax_id" db:"tax_id"`
	Phone     string          `json:"phone" db:"phone"`
	Email     string          `json:"email" db:"email"`
	Discount  decimal.Decimal `json:"discount" db:"discount"`
	Active    bool            `json:"active" db:"active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
