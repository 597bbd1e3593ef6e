package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lockwise/internal/database"
	"lockwise/internal/domain"
	"lockwise/internal/models"

	"github.com/rs/zerolog"
	yamlv2 "gopkg.in/yaml.v2"
)

// CatalogService manages the bookable service catalog.
type CatalogService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewCatalogService(store domain.Store, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	return s.store.ListServices(ctx, activeOnly)
}

func (s *CatalogService) GetService(ctx context.Context, id int64) (*models.Service, error) {
	return s.store.GetServiceByID(ctx, id)
}

func (s *CatalogService) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	return s.store.GetServiceByName(ctx, name)
}

func (s *CatalogService) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if !models.ValidCategory(svc.Category) {
		return fmt.Errorf("unknown service category %q", svc.Category)
	}
	if svc.EstimatedDuration <= 0 {
		svc.EstimatedDuration = models.DefaultSlotMinutes
	}
	return s.store.CreateService(ctx, svc)
}

func (s *CatalogService) UpdateService(ctx context.Context, svc *models.Service) error {
	if svc.Category != "" && !models.ValidCategory(svc.Category) {
		return fmt.Errorf("unknown service category %q", svc.Category)
	}
	return s.store.UpdateService(ctx, svc)
}

func (s *CatalogService) DeactivateService(ctx context.Context, id int64) error {
	return s.store.DeactivateService(ctx, id)
}

type catalogFile struct {
	Services []*models.Service `yaml:"services"`
}

// LoadCatalog reads the seed catalog from a YAML file and inserts any
// services missing from the database. Existing rows are left untouched.
func (s *CatalogService) LoadCatalog(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yamlv2.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	seeded := 0
	for _, svc := range file.Services {
		if svc.Name == "" {
			continue
		}
		if !models.ValidCategory(svc.Category) {
			s.logger.Warn().Str("service", svc.Name).Str("category", svc.Category).Msg("skipping catalog entry with unknown category")
			continue
		}
		if svc.EstimatedDuration <= 0 {
			svc.EstimatedDuration = models.DefaultSlotMinutes
		}
		svc.IsActive = true
		svc.IsBookable = true

		created, err := s.seedService(ctx, svc)
		if err != nil {
			return err
		}
		if created {
			seeded++
		}
	}

	s.logger.Info().Int("total", len(file.Services)).Int("seeded", seeded).Str("path", path).Msg("service catalog loaded")
	return nil
}

func (s *CatalogService) seedService(ctx context.Context, svc *models.Service) (bool, error) {
	existing, err := s.store.GetServiceByName(ctx, svc.Name)
	if err == nil && existing != nil {
		return false, nil
	}
	if err != nil && !errors.Is(err, database.ErrServiceNotFound) {
		return false, err
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return false, fmt.Errorf("seed service %q: %w", svc.Name, err)
	}
	return true, nil
}
