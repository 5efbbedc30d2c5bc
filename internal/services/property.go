package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/repos"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type PropertyService interface {
	Create(ctx context.Context, slug, name, timezone string) (*types.Property, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Property, error)
	GetBySlug(ctx context.Context, slug string) (*types.Property, error)
}

type propertyService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.PropertyRepo
}

func NewPropertyService(db *gorm.DB, baseLog *logger.Logger, repo repos.PropertyRepo) PropertyService {
	return &propertyService{
		db:   db,
		log:  baseLog.With("service", "PropertyService"),
		repo: repo,
	}
}

func (s *propertyService) Create(ctx context.Context, slug, name, timezone string) (*types.Property, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	name = strings.TrimSpace(name)
	if slug == "" || name == "" {
		return nil, fmt.Errorf("%w: slug and name required", ErrInvalidInput)
	}

	existing, err := s.repo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, fmt.Errorf("check property slug: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: property slug %q already exists", ErrInvalidInput, slug)
	}

	prop := &types.Property{
		ID:       uuid.New(),
		Slug:     slug,
		Name:     name,
		Timezone: strings.TrimSpace(timezone),
	}
	if _, err := s.repo.Create(ctx, nil, []*types.Property{prop}); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return prop, nil
}

func (s *propertyService) Get(ctx context.Context, id uuid.UUID) (*types.Property, error) {
	prop, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load property: %w", err)
	}
	if prop == nil {
		return nil, ErrNotFound
	}
	return prop, nil
}

func (s *propertyService) GetBySlug(ctx context.Context, slug string) (*types.Property, error) {
	prop, err := s.repo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, fmt.Errorf("load property: %w", err)
	}
	if prop == nil {
		return nil, ErrNotFound
	}
	return prop, nil
}
