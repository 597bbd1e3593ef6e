package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lockwise/internal/models"
)

const serviceColumns = `id, name, category, description, base_price, estimated_duration, is_active, is_bookable, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (*models.Service, error) {
	var s models.Service
	var description sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.Category, &description, &s.BasePrice,
		&s.EstimatedDuration, &s.IsActive, &s.IsBookable, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Description = description.String
	return &s, nil
}

func (db *DB) CreateService(ctx context.Context, service *models.Service) error {
	query := `INSERT INTO services (name, category, description, base_price, estimated_duration, is_active, is_bookable, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		service.Name,
		service.Category,
		service.Description,
		service.BasePrice,
		service.EstimatedDuration,
		service.IsActive,
		service.IsBookable,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	service.ID = id
	service.CreatedAt = now
	service.UpdatedAt = now
	return nil
}

func (db *DB) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	service, err := scanService(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return service, nil
}

func (db *DB) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = ? COLLATE NOCASE`
	service, err := scanService(db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service by name: %w", err)
	}
	return service, nil
}

func (db *DB) ListServices(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY category, name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) UpdateService(ctx context.Context, service *models.Service) error {
	query := `UPDATE services SET name = ?, category = ?, description = ?, base_price = ?,
              estimated_duration = ?, is_active = ?, is_bookable = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		service.Name,
		service.Category,
		service.Description,
		service.BasePrice,
		service.EstimatedDuration,
		service.IsActive,
		service.IsBookable,
		time.Now(),
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// DeactivateService soft-deletes: the row stays for historical bookings.
func (db *DB) DeactivateService(ctx context.Context, id int64) error {
	query := `UPDATE services SET is_active = 0, is_bookable = 0, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrServiceNotFound
	}
	return nil
}
