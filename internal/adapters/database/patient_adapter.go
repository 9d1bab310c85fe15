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

var patientColumns = []interface{}{
	"id", "name", "document_id", "date_of_birth", "phone", "email",
	"active", "created_at", "updated_at",
}

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new patient
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	query, args, err := a.db.Insert("patients").
		Rows(goqu.Record{
			"id":            patient.ID,
			"name":          patient.Name,
			"document_id":   patient.DocumentID,
			"date_of_birth": patient.DateOfBirth,
			"phone":         patient.Phone,
			"email":         patient.Email,
			"active":        patient.Active,
			"created_at":    patient.CreatedAt,
			"updated_at":    patient.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create patient", err)
	}

	return nil
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	query, args, err := a.db.Select(patientColumns...).
		From("patients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	patient := &entities.Patient{}
	var phone, email sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&patient.ID,
		&patient.Name,
		&patient.DocumentID,
		&patient.DateOfBirth,
		&phone,
		&email,
		&patient.Active,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get patient", err)
	}

	patient.Phone = phone.String
	patient.Email = email.String

	return patient, nil
}

// Update persists changes to an existing patient
func (a *PatientAdapter) Update(ctx context.Context, patient *entities.Patient) error {
	patient.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("patients").
		Set(goqu.Record{
			"name":          patient.Name,
			"document_id":   patient.DocumentID,
			"date_of_birth": patient.DateOfBirth,
			"phone":         patient.Phone,
			"email":         patient.Email,
			"active":        patient.Active,
			"updated_at":    patient.UpdatedAt,
		}).
		Where(goqu.Ex{"id": patient.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to update patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", patient.ID))
	}

	return nil
}

// List retrieves all patients
func (a *PatientAdapter) List(ctx context.Context) ([]*entities.Patient, error) {
	query, args, err := a.db.Select(patientColumns...).
		From("patients").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list patients", err)
	}
	defer rows.Close()

	var patients []*entities.Patient
	for rows.Next() {
		patient := &entities.Patient{}
		var phone, email sql.NullString

		err := rows.Scan(
			&patient.ID,
			&patient.Name,
			&patient.DocumentID,
			&patient.DateOfBirth,
			&phone,
			&email,
			&patient.Active,
			&patient.CreatedAt,
			&patient.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan patient", err)
		}

		patient.Phone = phone.String
		patient.Email = email.String
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read patient rows", err)
	}

	return patients, nil
}
