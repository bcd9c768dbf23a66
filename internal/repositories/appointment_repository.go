package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salaogestor_backend/internal/models"
)

const dateLayout = "2006-01-02"

// AppointmentRepository defines the interface for appointment-related database operations.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, executor SQLExecutor, appt *models.Appointment) (int64, error)
	GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error)
	// ListInRange returns active appointments dated within [start, end] ordered by
	// (date, time, id). A non-nil staff restricts rows to that staff email.
	ListInRange(ctx context.Context, start, end time.Time, staff *string) ([]models.Appointment, error)
	GetAppointments(ctx context.Context, filters models.AppointmentFilters) ([]models.Appointment, int, error)
	SlotTaken(ctx context.Context, staff string, date time.Time, slot string) (bool, error)
	UpdateStatus(ctx context.Context, executor SQLExecutor, id int64, status models.AppointmentStatus) error
}

type appointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const selectAppointmentFields = `a.id, a.client_id, c.name, a.service, a.staff, a.date, a.time, a.status, a.created_at`

const appointmentJoins = ` FROM appointments a JOIN clients c ON a.client_id = c.id`

func scanAppointment(row scanner, extra ...interface{}) (*models.Appointment, error) {
	var appt models.Appointment
	var status string
	dest := append([]interface{}{
		&appt.ID, &appt.ClientID, &appt.ClientName, &appt.Service, &appt.Staff,
		&appt.Date, &appt.Time, &status, &appt.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	appt.Status = models.AppointmentStatus(status)
	return &appt, nil
}

// CreateAppointment inserts a new row. Status defaults to pending.
func (r *appointmentRepository) CreateAppointment(ctx context.Context, executor SQLExecutor, appt *models.Appointment) (int64, error) {
	query := `INSERT INTO appointments (client_id, service, staff, date, time, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	if appt.Status == "" {
		appt.Status = models.AppointmentStatusPending
	}
	appt.CreatedAt = time.Now()

	err := executor.QueryRowContext(ctx, query,
		appt.ClientID, appt.Service, appt.Staff, appt.DateString(), appt.TimeString(),
		string(appt.Status), appt.CreatedAt,
	).Scan(&appt.ID)
	if err != nil {
		return 0, classifyPQError(err, "creating appointment")
	}
	return appt.ID, nil
}

func (r *appointmentRepository) GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT ` + selectAppointmentFields + appointmentJoins + ` WHERE a.id = $1`
	appt, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting appointment by ID %d: %v", ErrDatabaseError, id, err)
	}
	return appt, nil
}

// listInRangeQuery excludes cancelled rows and scopes to staff when set.
func listInRangeQuery(start, end time.Time, staff *string) (string, []interface{}) {
	query := `SELECT ` + selectAppointmentFields + appointmentJoins +
		` WHERE a.date BETWEEN $1 AND $2 AND a.status <> 'cancelled'`
	args := []interface{}{start.Format(dateLayout), end.Format(dateLayout)}
	if staff != nil {
		query += ` AND a.staff = $3`
		args = append(args, *staff)
	}
	query += ` ORDER BY a.date, a.time, a.id`
	return query, args
}

func (r *appointmentRepository) ListInRange(ctx context.Context, start, end time.Time, staff *string) ([]models.Appointment, error) {
	query, args := listInRangeQuery(start, end, staff)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying appointments in range: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	appts := []models.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
		}
		appts = append(appts, *appt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appts, nil
}

func appointmentsQuery(filters models.AppointmentFilters) (string, []interface{}) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + selectAppointmentFields + `, COUNT(*) OVER() as total_count` + appointmentJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Staff != nil {
		conditions = append(conditions, fmt.Sprintf("a.staff = $%d", argCount))
		args = append(args, *filters.Staff)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("a.client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argCount))
		args = append(args, filters.DateFrom.Format(dateLayout))
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argCount))
		args = append(args, filters.DateTo.Format(dateLayout))
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.date, a.time, a.id")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}
	return queryBuilder.String(), args
}

func (r *appointmentRepository) GetAppointments(ctx context.Context, filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	appts := []models.Appointment{}
	var totalCount int

	query, args := appointmentsQuery(filters)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		appt, err := scanAppointment(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
		}
		appts = append(appts, *appt)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appts, totalCount, nil
}

// SlotTaken reports whether staff already has an active appointment at date/slot.
func (r *appointmentRepository) SlotTaken(ctx context.Context, staff string, date time.Time, slot string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM appointments a
	            WHERE a.staff = $1 AND a.date = $2 AND a.time = $3 AND a.status <> 'cancelled')`
	var taken bool
	if err := r.db.QueryRowContext(ctx, query, staff, date.Format(dateLayout), slot).Scan(&taken); err != nil {
		return false, fmt.Errorf("%w: checking slot availability: %v", ErrDatabaseError, err)
	}
	return taken, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, executor SQLExecutor, id int64, status models.AppointmentStatus) error {
	result, err := executor.ExecContext(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return classifyPQError(err, fmt.Sprintf("updating status of appointment ID %d", id))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for appointment ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
