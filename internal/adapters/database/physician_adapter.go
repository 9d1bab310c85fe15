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

var physicianColumns = []interface{}{
	"id", "name", "license_id", "phone", "email", "specialty_id",
	"reference_price", "active", "work_start_min", "work_end_min",
	"default_duration_min", "created_at", "updated_at",
}

// PhysicianAdapter implements the PhysicianRepository interface
type PhysicianAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPhysicianAdapter creates a new physician adapter
func NewPhysicianAdapter(client *postgres.Client) repositories.PhysicianRepository {
	return &PhysicianAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new physician
func (a *PhysicianAdapter) Create(ctx context.Context, physician *entities.Physician) error {
	query, args, err := a.db.Insert("physicians").
		Rows(physicianRecord(physician)).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create physician", err)
	}

	return nil
}

// GetByID retrieves a physician by ID
func (a *PhysicianAdapter) GetByID(ctx context.Context, id string) (*entities.Physician, error) {
	query, args, err := a.db.Select(physicianColumns...).
		From("physicians").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	physician, err := scanPhysician(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("physician with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get physician", err)
	}

	return physician, nil
}

// Update persists changes to an existing physician
func (a *PhysicianAdapter) Update(ctx context.Context, physician *entities.Physician) error {
	physician.UpdatedAt = time.Now().UTC()

	record := physicianRecord(physician)
	delete(record, "id")
	delete(record, "created_at")

	query, args, err := a.db.Update("physicians").
		Set(record).
		Where(goqu.Ex{"id": physician.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to update physician", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("physician with id %s not found", physician.ID))
	}

	return nil
}

// Delete removes a physician
func (a *PhysicianAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("physicians").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("failed to delete physician", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("physician with id %s not found", id))
	}

	return nil
}

// ExistsByID reports whether a physician exists
func (a *PhysicianAdapter) ExistsByID(ctx context.Context, id string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("physicians").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewStorageError("failed to build exists query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewStorageError("failed to check physician existence", err)
	}

	return count > 0, nil
}

// List retrieves all physicians
func (a *PhysicianAdapter) List(ctx context.Context) ([]*entities.Physician, error) {
	query, args, err := a.db.Select(physicianColumns...).
		From("physicians").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	return a.queryPhysicians(ctx, query, args)
}

// ListActiveBySpecialty retrieves the active physicians of a specialty,
// cheapest reference price first with id as the tie-break.
func (a *PhysicianAdapter) ListActiveBySpecialty(ctx context.Context, specialtyID string) ([]*entities.Physician, error) {
	query, args, err := a.db.Select(physicianColumns...).
		From("physicians").
		Where(goqu.Ex{
			"specialty_id": specialtyID,
			"active":       true,
		}).
		Order(goqu.I("reference_price").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build specialty query", err)
	}

	return a.queryPhysicians(ctx, query, args)
}

func (a *PhysicianAdapter) queryPhysicians(ctx context.Context, query string, args []interface{}) ([]*entities.Physician, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list physicians", err)
	}
	defer rows.Close()

	var physicians []*entities.Physician
	for rows.Next() {
		physician, err := scanPhysician(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan physician", err)
		}
		physicians = append(physicians, physician)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read physician rows", err)
	}

	return physicians, nil
}

func physicianRecord(physician *entities.Physician) goqu.Record {
	return goqu.Record{
		"id":                   physician.ID,
		"name":                 physician.Name,
		"license_id":           physician.LicenseID,
		"phone":                physician.Phone,
		"email":                physician.Email,
		"specialty_id":         physician.SpecialtyID,
		"reference_price":      physician.ReferencePrice,
		"active":               physician.Active,
		"work_start_min":       int(physician.WorkStart),
		"work_end_min":         int(physician.WorkEnd),
		"default_duration_min": physician.DefaultDurationMin,
		"created_at":           physician.CreatedAt,
		"updated_at":           physician.UpdatedAt,
	}
}

func scanPhysician(row rowScanner) (*entities.Physician, error) {
	physician := &entities.Physician{}
	var phone, email sql.NullString
	var workStart, workEnd int

	err := row.Scan(
		&physician.ID,
		&physician.Name,
		&physician.LicenseID,
		&phone,
		&email,
		&physician.SpecialtyID,
		&physician.ReferencePrice,
		&physician.Active,
		&workStart,
		&workEnd,
		&physician.DefaultDurationMin,
		&physician.CreatedAt,
		&physician.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	physician.Phone = phone.String
	physician.Email = email.String
	physician.WorkStart = entities.MinuteOfDay(workStart)
	physician.WorkEnd = entities.MinuteOfDay(workEnd)

	return physician, nil
}
