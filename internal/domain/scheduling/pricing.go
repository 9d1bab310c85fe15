package scheduling

import (
	"github.com/shopspring/decimal"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// Price computes an appointment's monetary value. Cancelled appointments
// are worth zero. With an insurance plan the reference price is discounted
// by the plan's fraction; without one it applies unchanged. Amounts are
// rounded to 2 decimal places, half up, at the point of computation.
//
// Every mutation path (create, cancel, reschedule) calls this explicitly;
// the value is never recomputed by a persistence hook.
func Price(reference decimal.Decimal, plan *entities.InsurancePlan, status entities.AppointmentStatus) decimal.Decimal {
	if status == entities.AppointmentStatusCancelled {
		return decimal.Zero
	}
	if plan != nil {
		factor := decimal.NewFromInt(1).Sub(plan.Discount)
		return reference.Mul(factor).Round(2)
	}
	return reference.Round(2)
}
