package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

// ReportService aggregates the engine's appointment data into billing and
// ranking reports. It only reads; all mutation lives in the scheduling and
// lifecycle services.
type ReportService struct {
	appointments   repositories.AppointmentRepository
	insurancePlans repositories.InsurancePlanRepository
	paymentMethods repositories.PaymentMethodRepository
}

// NewReportService creates a new report service
func NewReportService(
	appointments repositories.AppointmentRepository,
	insurancePlans repositories.InsurancePlanRepository,
	paymentMethods repositories.PaymentMethodRepository,
) *ReportService {
	return &ReportService{
		appointments:   appointments,
		insurancePlans: insurancePlans,
		paymentMethods: paymentMethods,
	}
}

// BillingLine is one aggregated billing amount
type BillingLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// BillingReport sums completed appointments over a period
type BillingReport struct {
	Total           decimal.Decimal `json:"total"`
	ByPaymentMethod []BillingLine   `json:"by_payment_method"`
	ByInsurancePlan []BillingLine   `json:"by_insurance_plan"`
}

// Billing computes the billing report for the calendar-date range
// [from, to]. Both bounds are dates; the range covers from's start of day
// through the end of to's day.
func (s *ReportService) Billing(ctx context.Context, from, to time.Time) (*BillingReport, error) {
	if from.After(to) {
		return nil, apperrors.NewBusinessRuleError("the start date cannot be after the end date")
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	completed, err := s.appointments.ListCompletedWithin(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return nil, apperrors.NewNotFoundError("no completed appointments found in the given period")
	}

	report := &BillingReport{Total: decimal.Zero}
	byMethod := map[string]decimal.Decimal{}
	byPlan := map[string]decimal.Decimal{}
	for _, a := range completed {
		report.Total = report.Total.Add(a.Value)
		if a.PaymentMethodID != nil {
			byMethod[*a.PaymentMethodID] = byMethod[*a.PaymentMethodID].Add(a.Value)
		}
		if a.InsurancePlanID != nil {
			byPlan[*a.InsurancePlanID] = byPlan[*a.InsurancePlanID].Add(a.Value)
		}
	}

	report.ByPaymentMethod, err = s.labelLines(ctx, byMethod, func(ctx context.Context, id string) (string, error) {
		method, err := s.paymentMethods.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return method.Description, nil
	})
	if err != nil {
		return nil, err
	}

	report.ByInsurancePlan, err = s.labelLines(ctx, byPlan, func(ctx context.Context, id string) (string, error) {
		plan, err := s.insurancePlans.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return plan.Name, nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// PhysicianRanking returns the physicians ordered by completed-appointment
// count for one calendar month.
func (s *ReportService) PhysicianRanking(ctx context.Context, year int, month time.Month) ([]repositories.PhysicianRankingRow, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.NewValidationError("month must be between 1 and 12")
	}
	if year <= 0 {
		return nil, apperrors.NewValidationError("year must be positive")
	}
	return s.appointments.CountCompletedByPhysician(ctx, year, month)
}

// CompletedInPeriod lists the completed appointments in [from, to).
func (s *ReportService) CompletedInPeriod(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error) {
	if from.After(to) {
		return nil, apperrors.NewBusinessRuleError("the start date cannot be after the end date")
	}
	completed, err := s.appointments.ListCompletedWithin(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return nil, apperrors.NewNotFoundError("no completed appointments found in the given period")
	}
	return completed, nil
}

// labelLines resolves grouped amounts into labelled lines sorted by label
// so report output is deterministic.
func (s *ReportService) labelLines(ctx context.Context, amounts map[string]decimal.Decimal, nameOf func(context.Context, string) (string, error)) ([]BillingLine, error) {
	lines := make([]BillingLine, 0, len(amounts))
	for id, amount := range amounts {
		label, err := nameOf(ctx, id)
		if err != nil {
			return nil, err
		}
		lines = append(lines, BillingLine{Label: label, Amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Label < lines[j].Label })
	return lines, nil
}
