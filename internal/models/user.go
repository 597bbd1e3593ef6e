package models

import "time"

type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	IsAdmin    bool      `json:"is_admin"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Handled   bool      `json:"handled"`
	CreatedAt time.Time `json:"created_at"`
}

type Subscriber struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	SubscribedAt time.Time  `json:"subscribed_at"`
	Unsubscribed *time.Time `json:"unsubscribed_at,omitempty"`
}
