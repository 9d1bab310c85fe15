package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/repositories"
	"github.com/smartmed/consultas/internal/infrastructure/clients/postgres"
	apperrors "github.com/smartmed/consultas/pkg/errors"
)

var appointmentColumns = []interface{}{
	"id", "scheduled_at", "duration_min", "status", "value", "notes",
	"patient_id", "physician_id", "receptionist_id",
	"payment_method_id", "insurance_plan_id",
	"created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	query, args, err := a.db.Insert("appointments").
		Rows(appointmentRecord(appointment)).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to create appointment", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	appointment, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get appointment", err)
	}

	return appointment, nil
}

// Update persists changes to an existing appointment
func (a *AppointmentAdapter) Update(ctx context.Context, appointment *entities.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"scheduled_at":      appointment.ScheduledAt,
			"duration_min":      appointment.DurationMin,
			"status":            appointment.Status,
			"value":             appointment.Value,
			"notes":             appointment.Notes,
			"payment_method_id": appointment.PaymentMethodID,
			"insurance_plan_id": appointment.InsurancePlanID,
			"updated_at":        appointment.UpdatedAt,
		}).
		Where(goqu.Ex{"id": appointment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to update appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", appointment.ID))
	}

	return nil
}

// Delete removes an appointment
func (a *AppointmentAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("failed to delete appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	return nil
}

// ExistsByID reports whether an appointment exists
func (a *AppointmentAdapter) ExistsByID(ctx context.Context, id string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewStorageError("failed to build exists query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewStorageError("failed to check appointment existence", err)
	}

	return count > 0, nil
}

// ListByPhysicianWithin retrieves a physician's appointments in [from, to)
func (a *AppointmentAdapter) ListByPhysicianWithin(ctx context.Context, physicianID string, from, to time.Time) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(
			goqu.Ex{"physician_id": physicianID},
			goqu.C("scheduled_at").Gte(from),
			goqu.C("scheduled_at").Lt(to),
		).
		Order(goqu.I("scheduled_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build list query", err)
	}

	return a.queryAppointments(ctx, query, args)
}

// ListByPatient retrieves a patient's appointments with optional filters
func (a *AppointmentAdapter) ListByPatient(ctx context.Context, patientID string, filter repositories.HistoryFilter) ([]*entities.Appointment, error) {
	ds := a.db.Select(prefixedAppointmentColumns()...).
		From(goqu.T("appointments").As("a")).
		Where(goqu.Ex{"a.patient_id": patientID})

	if filter.From != nil {
		ds = ds.Where(goqu.C("scheduled_at").Table("a").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("scheduled_at").Table("a").Lte(*filter.To))
	}
	if filter.PhysicianID != nil {
		ds = ds.Where(goqu.Ex{"a.physician_id": *filter.PhysicianID})
	}
	if filter.SpecialtyID != nil {
		ds = ds.Join(
			goqu.T("physicians").As("p"),
			goqu.On(goqu.Ex{"p.id": goqu.I("a.physician_id")}),
		).Where(goqu.Ex{"p.specialty_id": *filter.SpecialtyID})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"a.status": filter.Status})
	}

	ds = ds.Order(goqu.I("a.scheduled_at").Desc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build history query", err)
	}

	return a.queryAppointments(ctx, query, args)
}

// ListCompletedWithin retrieves completed appointments scheduled in [from, to)
func (a *AppointmentAdapter) ListCompletedWithin(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(
			goqu.Ex{"status": entities.AppointmentStatusCompleted},
			goqu.C("scheduled_at").Gte(from),
			goqu.C("scheduled_at").Lt(to),
		).
		Order(goqu.I("scheduled_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build completed query", err)
	}

	return a.queryAppointments(ctx, query, args)
}

// Replace persists a cancellation together with its replacement appointment
// in a single transaction.
func (a *AppointmentAdapter) Replace(ctx context.Context, cancelled, replacement *entities.Appointment) error {
	updateQuery, updateArgs, err := a.db.Update("appointments").
		Set(goqu.Record{
			"status":     cancelled.Status,
			"value":      cancelled.Value,
			"notes":      cancelled.Notes,
			"updated_at": cancelled.UpdatedAt,
		}).
		Where(goqu.Ex{"id": cancelled.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build cancel query", err)
	}

	insertQuery, insertArgs, err := a.db.Insert("appointments").
		Rows(appointmentRecord(replacement)).
		ToSQL()
	if err != nil {
		return apperrors.NewStorageError("failed to build replacement query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return mapWriteError("failed to cancel original appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", cancelled.ID))
	}

	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return mapWriteError("failed to create replacement appointment", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit reschedule", err)
	}

	return nil
}

// CountCompletedByPhysician aggregates completed appointments per physician
// for one calendar month
func (a *AppointmentAdapter) CountCompletedByPhysician(ctx context.Context, year int, month time.Month) ([]repositories.PhysicianRankingRow, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query, args, err := a.db.Select(
		goqu.I("p.id").As("physician_id"),
		goqu.I("p.name").As("physician_name"),
		goqu.COUNT("a.id").As("appointments"),
	).
		From(goqu.T("appointments").As("a")).
		Join(
			goqu.T("physicians").As("p"),
			goqu.On(goqu.Ex{"p.id": goqu.I("a.physician_id")}),
		).
		Where(
			goqu.Ex{"a.status": entities.AppointmentStatusCompleted},
			goqu.C("scheduled_at").Table("a").Gte(from),
			goqu.C("scheduled_at").Table("a").Lt(to),
		).
		GroupBy(goqu.I("p.id"), goqu.I("p.name")).
		Order(goqu.L("COUNT(a.id)").Desc(), goqu.I("p.name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build ranking query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query ranking", err)
	}
	defer rows.Close()

	var ranking []repositories.PhysicianRankingRow
	for rows.Next() {
		var row repositories.PhysicianRankingRow
		if err := rows.Scan(&row.PhysicianID, &row.PhysicianName, &row.Appointments); err != nil {
			return nil, apperrors.NewStorageError("failed to scan ranking row", err)
		}
		ranking = append(ranking, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read ranking rows", err)
	}

	return ranking, nil
}

func (a *AppointmentAdapter) queryAppointments(ctx context.Context, query string, args []interface{}) ([]*entities.Appointment, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read appointment rows", err)
	}

	return appointments, nil
}

func appointmentRecord(appointment *entities.Appointment) goqu.Record {
	return goqu.Record{
		"id":                appointment.ID,
		"scheduled_at":      appointment.ScheduledAt,
		"duration_min":      appointment.DurationMin,
		"status":            appointment.Status,
		"value":             appointment.Value,
		"notes":             appointment.Notes,
		"patient_id":        appointment.PatientID,
		"physician_id":      appointment.PhysicianID,
		"receptionist_id":   appointment.ReceptionistID,
		"payment_method_id": appointment.PaymentMethodID,
		"insurance_plan_id": appointment.InsurancePlanID,
		"created_at":        appointment.CreatedAt,
		"updated_at":        appointment.UpdatedAt,
	}
}

func prefixedAppointmentColumns() []interface{} {
	cols := make([]interface{}, 0, len(appointmentColumns))
	for _, c := range appointmentColumns {
		cols = append(cols, goqu.I("a."+c.(string)))
	}
	return cols
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var notes, paymentMethodID, insurancePlanID sql.NullString

	err := row.Scan(
		&appointment.ID,
		&appointment.ScheduledAt,
		&appointment.DurationMin,
		&appointment.Status,
		&appointment.Value,
		&notes,
		&appointment.PatientID,
		&appointment.PhysicianID,
		&appointment.ReceptionistID,
		&paymentMethodID,
		&insurancePlanID,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointment.Notes = notes.String
	if paymentMethodID.Valid {
		appointment.PaymentMethodID = &paymentMethodID.String
	}
	if insurancePlanID.Valid {
		appointment.InsurancePlanID = &insurancePlanID.String
	}

	return appointment, nil
}

// mapWriteError surfaces unique-constraint violations as constraint errors
// so callers can tell a lost booking race from an infrastructure failure.
func mapWriteError(message string, err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperrors.NewConstraintError(message, err)
	}
	return apperrors.NewStorageError(message, err)
}
