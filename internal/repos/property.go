package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type PropertyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, properties []*types.Property) ([]*types.Property, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Property, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Property, error)
}

type propertyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyRepo(db *gorm.DB, baseLog *logger.Logger) PropertyRepo {
	repoLog := baseLog.With("repo", "PropertyRepo")
	return &propertyRepo{db: db, log: repoLog}
}

func (r *propertyRepo) Create(ctx context.Context, tx *gorm.DB, properties []*types.Property) ([]*types.Property, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(properties) == 0 {
		return []*types.Property{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *propertyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Property, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.Property
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *propertyRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Property, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if slug == "" {
		return nil, nil
	}

	var result types.Property
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
