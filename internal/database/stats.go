package database

import (
	"context"
	"fmt"
	"time"

	"lockwise/internal/models"
)

// GetBookingStats aggregates counts per status plus revenue over an
// optional date range. Revenue prefers actual_cost, falls back to
// estimated_cost, and treats both-null as zero.
func (db *DB) GetBookingStats(ctx context.Context, from, to *time.Time) (*models.BookingStats, error) {
	query := `SELECT
                COUNT(*),
                COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(COALESCE(actual_cost, estimated_cost, 0)), 0)
              FROM bookings WHERE 1=1`
	args := []any{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusCompleted,
		models.StatusCancelled,
	}

	if from != nil {
		query += ` AND booking_date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if to != nil {
		query += ` AND booking_date <= ?`
		args = append(args, to.Format(dateLayout))
	}

	var stats models.BookingStats
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Completed,
		&stats.Cancelled,
		&stats.Revenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	return &stats, nil
}
