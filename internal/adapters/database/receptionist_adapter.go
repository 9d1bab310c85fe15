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

var receptionistColumns = []interface{}{
	"id", "name", "phone", "email", "active", "created_at", "updated_at",
}

// ReceptionistAdapter implements the ReceptionistRepository interface
type ReceptionistAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReceptionistAdapter creates a new receptionist adapter
func NewReceptionistAdapter(client *postgres.Client) repositories.ReceptionistRepository {
	return &ReceptionistAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new receptionist
func (a *ReceptionistAdapter) Create(ctx context.Context, receptionist *entities.Receptionist) error {
	query, args, err := a.db.Insert("receptionists").
		Rows(goqu.Record{
			"id":         receptionist.ID,
			"name":       receptionist.Name,
			"phone":      receptionist.Phone,
			"email":      receptionist.Email,
			"active":     receptionist.Active,
			"created_at": receptionist.CreatedAt,
			"updated_at": receptionist.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create receptionist", err)
	}

	return nil
}

// GetByID retrieves a receptionist by ID
func (a *ReceptionistAdapter) GetByID(ctx context.Context, id string) (*entities.Receptionist, error) {
	query, args, err := a.db.Select(receptionistColumns...).
		From("receptionists").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	receptionist := &entities.Receptionist{}
	var phone, email sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&receptionist.ID,
		&receptionist.Name,
		&phone,
		&email,
		&receptionist.Active,
		&receptionist.CreatedAt,
		&receptionist.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("receptionist with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get receptionist", err)
	}

	receptionist.Phone = phone.String
	receptionist.Email = email.String

	return receptionist, nil
}

// Update persists changes to an existing receptionist
func (a *ReceptionistAdapter) Update(ctx context.Context, receptionist *entities.Receptionist) error {
	receptionist.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("receptionists").
		Set(goqu.Record{
			"name":       receptionist.Name,
			"phone":      receptionist.Phone,
			"email":      receptionist.Email,
			"active":     receptionist.Active,
			"updated_at": receptionist.UpdatedAt,
		}).
		Where(goqu.Ex{"id": receptionist.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to update receptionist", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("receptionist with id %s not found", receptionist.ID))
	}

	return nil
}

// List retrieves all receptionists
func (a *ReceptionistAdapter) List(ctx context.Context) ([]*entities.Receptionist, error) {
	query, args, err := a.db.Select(receptionistColumns...).
		From("receptionists").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list receptionists", err)
	}
	defer rows.Close()

	var receptionists []*entities.Receptionist
	for rows.Next() {
		receptionist := &entities.Receptionist{}
		var phone, email sql.NullString

		err := rows.Scan(
			&receptionist.ID,
			&receptionist.Name,
			&phone,
			&email,
			&receptionist.Active,
			&receptionist.CreatedAt,
			&receptionist.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan receptionist", err)
		}

		receptionist.Phone = phone.String
		receptionist.Email = email.String
		receptionists = append(receptionists, receptionist)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read receptionist rows", err)
	}

	return receptionists, nil
}
