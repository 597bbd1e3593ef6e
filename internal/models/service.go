package models

import "time"

type Service struct {
	ID                int64     `yaml:"id" json:"id"`
	Name              string    `yaml:"name" json:"name"`
	Category          string    `yaml:"category" json:"category"`
	Description       string    `yaml:"description" json:"description,omitempty"`
	BasePrice         float64   `yaml:"base_price" json:"base_price"`
	EstimatedDuration int       `yaml:"estimated_duration" json:"estimated_duration"` // minutes
	IsActive          bool      `yaml:"is_active" json:"is_active"`
	IsBookable        bool      `yaml:"is_bookable" json:"is_bookable"`
	CreatedAt         time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt         time.Time `yaml:"updated_at" json:"updated_at"`
}

// Bookable reports whether the service may be offered on the public
// booking path.
func (s *Service) Bookable() bool {
	return s.IsActive && s.IsBookable
}
