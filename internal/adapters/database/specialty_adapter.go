package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	"github.com/smartmed/consultas/internal/infrastructure/clients/postgres"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

var specialtyColumns = []interface{}{
	"id", "name", "description", "created_at", "updated_at",
}

// SpecialtyAdapter implements the SpecialtyRepository interface
type SpecialtyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSpecialtyAdapter creates a new specialty adapter
func NewSpecialtyAdapter(client *postgres.Client) repositories.SpecialtyRepository {
	return &SpecialtyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new specialty
func (a *SpecialtyAdapter) Create(ctx context.Context, specialty *entities.Specialty) error {
	query, args, err := a.db.Insert("specialties").
		Rows(goqu.Record{
			"id":          specialty.ID,
			"name":        specialty.Name,
			"description": specialty.Description,
			"created_at":  specialty.CreatedAt,
			"updated_at":  specialty.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create specialty", err)
	}

	return nil
}

// GetByID retrieves a specialty by ID
func (a *SpecialtyAdapter) GetByID(ctx context.Context, id string) (*entities.Specialty, error) {
	query, args, err := a.db.Select(specialtyColumns...).
		From("specialties").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	specialty := &entities.Specialty{}
	var description sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&specialty.ID,
		&specialty.Name,
		&description,
		&specialty.CreatedAt,
		&specialty.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("specialty with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get specialty", err)
	}

	specialty.Description = description.String

	return specialty, nil
}

// List retrieves all specialties
func (a *SpecialtyAdapter) List(ctx context.Context) ([]*entities.Specialty, error) {
	query, args, err := a.db.Select(specialtyColumns...).
		From("specialties").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list specialties", err)
	}
	defer rows.Close()

	var specialties []*entities.Specialty
	for rows.Next() {
		specialty := &entities.Specialty{}
		var description sql.NullString

		err := rows.Scan(
			&specialty.ID,
			&specialty.Name,
			&description,
			&specialty.CreatedAt,
			&specialty.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan specialty", err)
		}

		specialty.Description = description.String
		specialties = append(specialties, specialty)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read specialty rows", err)
	}

	return specialties, nil
}
