package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lockwise/internal/models"
)

// UpsertUser creates or refreshes a user keyed by email.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, name, phone, is_admin, last_seen_at, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(email) DO UPDATE SET
                  name = excluded.name,
                  phone = COALESCE(NULLIF(excluded.phone, ''), phone),
                  last_seen_at = excluded.last_seen_at,
                  updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.Phone,
		user.IsAdmin,
		now,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// TouchUserLastSeen is best-effort bookkeeping; callers log and
// continue on error.
func (db *DB) TouchUserLastSeen(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, time.Now(), time.Now(), id)
	return err
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name, phone, is_admin, last_seen_at, created_at, updated_at
              FROM users WHERE email = ? COLLATE NOCASE`

	var user models.User
	var phone sql.NullString
	var lastSeen sql.NullTime
	err := db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &phone, &user.IsAdmin,
		&lastSeen, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	user.Phone = phone.String
	if lastSeen.Valid {
		user.LastSeenAt = lastSeen.Time
	}
	return &user, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, email, name, phone, is_admin, last_seen_at, created_at, updated_at
              FROM users ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var phone sql.NullString
		var lastSeen sql.NullTime
		err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &phone, &user.IsAdmin,
			&lastSeen, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Phone = phone.String
		if lastSeen.Valid {
			user.LastSeenAt = lastSeen.Time
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
