package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	"github.com/smartmed/consultas/internal/infrastructure/clients/postgres"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

var insurancePlanColumns = []interface{}{
	"id", "name", "tax_id", "phone", "email", "discount", "active",
	"created_at", "updated_at",
}

// InsurancePlanAdapter implements the InsurancePlanRepository interface
type InsurancePlanAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInsurancePlanAdapter creates a new insurance plan adapter
func NewInsurancePlanAdapter(client *postgres.Client) repositories.InsurancePlanRepository {
	return &InsurancePlanAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new insurance plan
func (a *InsurancePlanAdapter) Create(ctx context.Context, plan *entities.InsurancePlan) error {
	query, args, err := a.db.Insert("insurance_plans").
		Rows(goqu.Record{
			"id":         plan.ID,
			"name":       plan.Name,
			"tax_id":     plan.TaxID,
			"phone":      plan.Phone,
			"email":      plan.Email,
			"discount":   plan.Discount,
			"active":     plan.Active,
			"created_at": plan.CreatedAt,
			"updated_at": plan.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create insurance plan", err)
	}

	return nil
}

// GetByID retrieves an insurance plan by ID
func (a *InsurancePlanAdapter) GetByID(ctx context.Context, id string) (*entities.InsurancePlan, error) {
	query, args, err := a.db.Select(insurancePlanColumns...).
		From("insurance_plans").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	plan := &entities.InsurancePlan{}
	var phone, email sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&plan.ID,
		&plan.Name,
		&plan.TaxID,
		&phone,
		&email,
		&plan.Discount,
		&plan.Active,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("insurance plan with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get insurance plan", err)
	}

	plan.Phone = phone.String
	plan.Email = email.String

	return plan, nil
}

// Update persists changes to an existing insurance plan
func (a *InsurancePlanAdapter) Update(ctx context.Context, plan *entities.InsurancePlan) error {
	plan.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("insurance_plans").
		Set(goqu.Record{
			"name":       plan.Name,
			"tax_id":     plan.TaxID,
			"phone":      plan.Phone,
			"email":      plan.Email,
			"discount":   plan.Discount,
			"active":     plan.Active,
			"updated_at": plan.UpdatedAt,
		}).
		Where(goqu.Ex{"id": plan.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to update insurance plan", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("insurance plan with id %s not found", plan.ID))
	}

	return nil
}

// List retrieves all insurance plans
func (a *InsurancePlanAdapter) List(ctx context.Context) ([]*entities.InsurancePlan, error) {
	query, args, err := a.db.Select(insurancePlanColumns...).
		From("insurance_plans").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list insurance plans", err)
	}
	defer rows.Close()

	var plans []*entities.InsurancePlan
	for rows.Next() {
		plan := &entities.InsurancePlan{}
		var phone, email sql.NullString

		err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.TaxID,
			&phone,
			&email,
			&plan.Discount,
			&plan.Active,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan insurance plan", err)
		}

		plan.Phone = phone.String
		plan.Email = email.String
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read insurance plan rows", err)
	}

	return plans, nil
}
