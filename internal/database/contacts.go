package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lockwise/internal/models"
)

func (db *DB) CreateContact(ctx context.Context, contact *models.Contact) error {
	query := `INSERT INTO contacts (name, email, phone, message, handled, created_at)
              VALUES (?, ?, ?, ?, 0, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Message,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	contact.ID = id
	contact.CreatedAt = now
	return nil
}

func (db *DB) ListContacts(ctx context.Context, unhandledOnly bool) ([]*models.Contact, error) {
	query := `SELECT id, name, email, phone, message, handled, created_at FROM contacts`
	if unhandledOnly {
		query += ` WHERE handled = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		var c models.Contact
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.Message, &c.Handled, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.Phone = phone.String
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func (db *DB) MarkContactHandled(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `UPDATE contacts SET handled = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark contact handled: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("contact not found")
	}
	return nil
}

// Subscribe adds an email to the newsletter, reactivating a previous
// unsubscribe. Duplicate active subscriptions are rejected.
func (db *DB) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var sub models.Subscriber
	var unsubscribed sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT id, email, subscribed_at, unsubscribed_at FROM subscribers WHERE email = ?`, email,
	).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt, &unsubscribed)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		now := time.Now()
		result, err := db.ExecContext(ctx,
			`INSERT INTO subscribers (email, subscribed_at) VALUES (?, ?)`, email, now)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe: %w", err)
		}
		id, _ := result.LastInsertId()
		return &models.Subscriber{ID: id, Email: email, SubscribedAt: now}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up subscriber: %w", err)
	}

	if !unsubscribed.Valid {
		return nil, ErrDuplicateSubscriber
	}

	now := time.Now()
	_, err = db.ExecContext(ctx,
		`UPDATE subscribers SET subscribed_at = ?, unsubscribed_at = NULL WHERE id = ?`, now, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resubscribe: %w", err)
	}
	sub.SubscribedAt = now
	sub.Unsubscribed = nil
	return &sub, nil
}

func (db *DB) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	result, err := db.ExecContext(ctx,
		`UPDATE subscribers SET unsubscribed_at = ? WHERE email = ? AND unsubscribed_at IS NULL`,
		time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("subscriber not found")
	}
	return nil
}

func (db *DB) ListSubscribers(ctx context.Context) ([]*models.Subscriber, error) {
	query := `SELECT id, email, subscribed_at, unsubscribed_at FROM subscribers
              WHERE unsubscribed_at IS NULL ORDER BY subscribed_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		var unsubscribed sql.NullTime
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt, &unsubscribed); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		if unsubscribed.Valid {
			s.Unsubscribed = &unsubscribed.Time
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}
