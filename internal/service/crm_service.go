package service

import (
	"context"
	"fmt"
	"strings"

	"lockwise/internal/domain"
	"lockwise/internal/models"

	"github.com/rs/zerolog"
)

// CrmService handles contact requests, newsletter subscriptions and the
// customer registry.
type CrmService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewCrmService(store domain.Store, logger *zerolog.Logger) *CrmService {
	return &CrmService{store: store, logger: logger}
}

func (s *CrmService) SubmitContact(ctx context.Context, contact *models.Contact) error {
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Email = strings.TrimSpace(strings.ToLower(contact.Email))
	contact.Message = strings.TrimSpace(contact.Message)

	if contact.Name == "" || contact.Message == "" {
		return fmt.Errorf("contact name and message are required")
	}
	if contact.Email == "" && contact.Phone == "" {
		return fmt.Errorf("contact needs an email or a phone number")
	}

	if err := s.store.CreateContact(ctx, contact); err != nil {
		return err
	}

	s.logger.Info().Int64("contact_id", contact.ID).Str("email", contact.Email).Msg("contact request received")
	return nil
}

func (s *CrmService) ListContacts(ctx context.Context, unhandledOnly bool) ([]*models.Contact, error) {
	return s.store.ListContacts(ctx, unhandledOnly)
}

func (s *CrmService) MarkContactHandled(ctx context.Context, id int64) error {
	return s.store.MarkContactHandled(ctx, id)
}

func (s *CrmService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	return s.store.Subscribe(ctx, email)
}

func (s *CrmService) Unsubscribe(ctx context.Context, email string) error {
	return s.store.Unsubscribe(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *CrmService) ListSubscribers(ctx context.Context) ([]*models.Subscriber, error) {
	return s.store.ListSubscribers(ctx)
}

// RegisterCustomer upserts a customer record keyed by email and reloads
// it so the caller sees the stored row, including a preserved phone.
func (s *CrmService) RegisterCustomer(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Email == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return s.store.GetUserByEmail(ctx, user.Email)
}

func (s *CrmService) ListCustomers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
