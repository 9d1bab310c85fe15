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

// PaymentMethodAdapter implements the PaymentMethodRepository interface
type PaymentMethodAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPaymentMethodAdapter creates a new payment method adapter
func NewPaymentMethodAdapter(client *postgres.Client) repositories.PaymentMethodRepository {
	return &PaymentMethodAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new payment method
func (a *PaymentMethodAdapter) Create(ctx context.Context, method *entities.PaymentMethod) error {
	query, args, err := a.db.Insert("payment_methods").
		Rows(goqu.Record{
			"id":          method.ID,
			"description": method.Description,
			"created_at":  method.CreatedAt,
			"updated_at":  method.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create payment method", err)
	}

	return nil
}

// GetByID retrieves a payment method by ID
func (a *PaymentMethodAdapter) GetByID(ctx context.Context, id string) (*entities.PaymentMethod, error) {
	query, args, err := a.db.Select("id", "description", "created_at", "updated_at").
		From("payment_methods").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	method := &entities.PaymentMethod{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&method.ID,
		&method.Description,
		&method.CreatedAt,
		&method.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment method with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get payment method", err)
	}

	return method, nil
}

// List retrieves all payment methods
func (a *PaymentMethodAdapter) List(ctx context.Context) ([]*entities.PaymentMethod, error) {
	query, args, err := a.db.Select("id", "description", "created_at", "updated_at").
		From("payment_methods").
		Order(goqu.I("description").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list payment methods", err)
	}
	defer rows.Close()

	var methods []*entities.PaymentMethod
	for rows.Next() {
		method := &entities.PaymentMethod{}
		err := rows.Scan(
			&method.ID,
			&method.Description,
			&method.CreatedAt,
			&method.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan payment method", err)
		}
		methods = append(methods, method)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read payment method rows", err)
	}

	return methods, nil
}
