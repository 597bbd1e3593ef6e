package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lockwise/internal/models"
)

const bookingColumns = `id, reference, user_id, service_id, service_name, service_type,
       booking_date, booking_time, duration, status, priority,
       customer_name, customer_phone, customer_email, service_address,
       technician, estimated_cost, actual_cost, notes,
       confirmed_at, started_at, completed_at, created_at, updated_at`

const dateLayout = "2006-01-02"

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var dateStr string
	var userID sql.NullInt64
	var technician, notes sql.NullString
	var estimatedCost, actualCost sql.NullFloat64
	var confirmedAt, startedAt, completedAt sql.NullTime

	err := row.Scan(
		&b.ID, &b.Reference, &userID, &b.ServiceID, &b.ServiceName, &b.ServiceType,
		&dateStr, &b.Time, &b.Duration, &b.Status, &b.Priority,
		&b.CustomerName, &b.CustomerPhone, &b.CustomerEmail, &b.Address,
		&technician, &estimatedCost, &actualCost, &notes,
		&confirmedAt, &startedAt, &completedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Date, err = time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}

	if userID.Valid {
		b.UserID = &userID.Int64
	}
	b.Technician = technician.String
	b.Notes = notes.String
	if estimatedCost.Valid {
		b.EstimatedCost = &estimatedCost.Float64
	}
	if actualCost.Valid {
		b.ActualCost = &actualCost.Float64
	}
	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

func insertBooking(ctx context.Context, ex interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, b *models.Booking) error {
	query := `INSERT INTO bookings (
                reference, user_id, service_id, service_name, service_type,
                booking_date, booking_time, duration, status, priority,
                customer_name, customer_phone, customer_email, service_address,
                technician, estimated_cost, actual_cost, notes, created_at, updated_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := ex.ExecContext(ctx, query,
		b.Reference,
		b.UserID,
		b.ServiceID,
		b.ServiceName,
		b.ServiceType,
		b.Date.Format(dateLayout),
		b.Time,
		b.Duration,
		b.Status,
		b.Priority,
		b.CustomerName,
		b.CustomerPhone,
		b.CustomerEmail,
		b.Address,
		nullString(b.Technician),
		b.EstimatedCost,
		b.ActualCost,
		nullString(b.Notes),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// queryServiceDayBookings loads a service's bookings for one date,
// excluding cancelled and no-show, which never block the grid.
func queryServiceDayBookings(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, serviceID int64, date time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE service_id = ? AND booking_date = ? AND status NOT IN (?, ?)
              ORDER BY booking_time`
	rows, err := q.QueryContext(ctx, query, serviceID, date.Format(dateLayout),
		models.StatusCancelled, models.StatusNoShow)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings for service/date: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetBookingsForServiceDate is the availability engine's read path.
func (db *DB) GetBookingsForServiceDate(ctx context.Context, serviceID int64, date time.Time) ([]*models.Booking, error) {
	return queryServiceDayBookings(ctx, db.DB, serviceID, date)
}

// CreateBookingSlotLocked re-checks availability and inserts inside a
// single transaction so two concurrent requests for the same slot
// cannot both pass the check. The free predicate receives the day's
// competing bookings as seen by the transaction.
func (db *DB) CreateBookingSlotLocked(ctx context.Context, booking *models.Booking, free func(existing []*models.Booking) bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := queryServiceDayBookings(ctx, tx, booking.ServiceID, booking.Date)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}

	if !free(existing) {
		return ErrSlotUnavailable
	}

	if err := insertBooking(ctx, tx, booking); err != nil {
		return err
	}

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatus moves a booking through the lifecycle guard
// table and stamps the matching transition timestamp. Timestamps are
// never cleared by later transitions.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, newStatus string) (*models.Booking, error) {
	if !models.ValidStatus(newStatus) {
		return nil, ErrInvalidTransition
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking status: %w", err)
	}

	if !models.CanTransition(current, newStatus) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	query := `UPDATE bookings SET status = ?, updated_at = ?`
	args := []any{newStatus, now}
	switch newStatus {
	case models.StatusConfirmed:
		query += `, confirmed_at = ?`
		args = append(args, now)
	case models.StatusInProgress:
		query += `, started_at = ?`
		args = append(args, now)
	case models.StatusCompleted:
		query += `, completed_at = ?`
		args = append(args, now)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	return db.GetBooking(ctx, id)
}

// GetBookingsByDateRange returns bookings with booking_date in
// [start, end] inclusive, calendar-visible statuses only, ordered by
// date then time. An empty technician matches everyone.
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time, technician string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booking_date >= ? AND booking_date <= ? AND status NOT IN (?, ?)`
	args := []any{start.Format(dateLayout), end.Format(dateLayout),
		models.StatusCancelled, models.StatusNoShow}

	if technician != "" {
		query += ` AND technician = ?`
		args = append(args, technician)
	}
	query += ` ORDER BY booking_date ASC, booking_time ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) AssignTechnician(ctx context.Context, id int64, technician string) error {
	query := `UPDATE bookings SET technician = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, nullString(technician), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to assign technician: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) UpdateBookingCosts(ctx context.Context, id int64, estimated, actual *float64) error {
	query := `UPDATE bookings SET estimated_cost = COALESCE(?, estimated_cost),
              actual_cost = COALESCE(?, actual_cost), updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, estimated, actual, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking costs: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) UpdateBookingNotes(ctx context.Context, id int64, notes string) error {
	query := `UPDATE bookings SET notes = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, nullString(notes), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking notes: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetDailyBookings groups a range's bookings by date key for exports.
func (db *DB) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		dateKey := b.Date.Format(dateLayout)
		daily[dateKey] = append(daily[dateKey], b)
	}
	return daily, nil
}
