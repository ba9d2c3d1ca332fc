package appointments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activeSlotIndex = "appointments_active_slot_idx"

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database. The
// partial unique index on active (date, time_slot) pairs makes every
// insert and reschedule the arbiter of slot exclusivity; the application
// level IsSlotTaken check is only a fast path for a friendlier error.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, customer_name, customer_phone, customer_email, customer_id,
	service_id, staff_id, service_name, service_price, date, time_slot, status, notes,
	payment_transaction_id, payment_amount, payment_currency, payment_status, payment_method,
	reminder_sent, created_at, updated_at`

// Create inserts a new appointment row.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (id, customer_name, customer_phone, customer_email, customer_id,
			service_id, staff_id, service_name, service_price, date, time_slot, status, notes,
			payment_transaction_id, payment_amount, payment_currency, payment_status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.CustomerName,
		appt.CustomerPhone,
		appt.CustomerEmail,
		appt.CustomerID,
		appt.ServiceID,
		appt.StaffID,
		appt.Snapshot.Name,
		appt.Snapshot.Price,
		appt.Date,
		appt.TimeSlot,
		appt.Status,
		appt.Notes,
		appt.Payment.TransactionID,
		appt.Payment.Amount,
		appt.Payment.Currency,
		appt.Payment.Status,
		appt.Payment.Method,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		if isActiveSlotViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// GetByID fetches an appointment by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: load: %w", err)
	}
	return appt, nil
}

// IsSlotTaken reports whether a non-cancelled appointment other than
// excludeID occupies the (date, time_slot) pair. A read failure is
// surfaced, never treated as a free slot.
func (r *PostgresRepository) IsSlotTaken(ctx context.Context, date, timeSlot string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE date = $1 AND time_slot = $2 AND status <> 'CANCELLED' AND id <> $3
		)
	`
	var taken bool
	if err := r.db.QueryRow(ctx, query, date, timeSlot, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("appointments: slot check: %w", err)
	}
	return taken, nil
}

// List returns appointments matching the filter, ordered by date then
// time slot (slot labels share the HH:MM-HH:MM shape, so lexical order
// is chronological within a day).
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Date != "" {
		args = append(args, filter.Date)
		clauses = append(clauses, "date = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date, time_slot"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// Update persists mutable appointment fields. The active-slot index
// backstops reschedule races the same way it does inserts.
func (r *PostgresRepository) Update(ctx context.Context, appt *Appointment) error {
	query := `
		UPDATE appointments
		SET date = $2, time_slot = $3, status = $4, notes = $5,
			payment_transaction_id = $6, payment_amount = $7, payment_currency = $8,
			payment_status = $9, payment_method = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.Date,
		appt.TimeSlot,
		appt.Status,
		appt.Notes,
		appt.Payment.TransactionID,
		appt.Payment.Amount,
		appt.Payment.Currency,
		appt.Payment.Status,
		appt.Payment.Method,
	).Scan(&appt.UpdatedAt); err != nil {
		if isActiveSlotViolation(err) {
			return ErrSlotTaken
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("appointments: update: %w", err)
	}
	return nil
}

// ListDueReminders returns confirmed, un-reminded appointments for a date.
func (r *PostgresRepository) ListDueReminders(ctx context.Context, date string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE date = $1 AND status = 'CONFIRMED' AND NOT reminder_sent
		ORDER BY time_slot`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: list due reminders: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// MarkReminderSent flags an appointment so the reminder is sent once.
func (r *PostgresRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `UPDATE appointments SET reminder_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: mark reminder sent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// CountByStatus tallies all appointments per lifecycle state in one scan.
func (r *PostgresRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM appointments
	`
	var counts StatusCounts
	if err := r.db.QueryRow(ctx, query).Scan(
		&counts.Total,
		&counts.Pending,
		&counts.Confirmed,
		&counts.Completed,
		&counts.Cancelled,
	); err != nil {
		return StatusCounts{}, fmt.Errorf("appointments: count by status: %w", err)
	}
	return counts, nil
}

// TopServices ranks snapshot service names by booking count.
func (r *PostgresRepository) TopServices(ctx context.Context, limit int) ([]ServiceUsage, error) {
	query := `
		SELECT service_name, COUNT(*) AS bookings
		FROM appointments
		GROUP BY service_name
		ORDER BY bookings DESC, service_name
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: top services: %w", err)
	}
	defer rows.Close()

	out := []ServiceUsage{}
	for rows.Next() {
		var usage ServiceUsage
		if err := rows.Scan(&usage.Name, &usage.Count); err != nil {
			return nil, fmt.Errorf("appointments: scan top services: %w", err)
		}
		out = append(out, usage)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.CustomerName,
		&appt.CustomerPhone,
		&appt.CustomerEmail,
		&appt.CustomerID,
		&appt.ServiceID,
		&appt.StaffID,
		&appt.Snapshot.Name,
		&appt.Snapshot.Price,
		&appt.Date,
		&appt.TimeSlot,
		&appt.Status,
		&appt.Notes,
		&appt.Payment.TransactionID,
		&appt.Payment.Amount,
		&appt.Payment.Currency,
		&appt.Payment.Status,
		&appt.Payment.Method,
		&appt.ReminderSent,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	out := []*Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// isActiveSlotViolation detects the unique-index conflict raised when a
// concurrent writer claimed the slot between check and write.
func isActiveSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == activeSlotIndex
}

var _ Repository = (*PostgresRepository)(nil)
