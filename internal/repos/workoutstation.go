package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type WorkoutStationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, stations []*types.WorkoutStation) ([]*types.WorkoutStation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WorkoutStation, error)
	ListByPropertyID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]*types.WorkoutStation, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
}

type workoutStationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkoutStationRepo(db *gorm.DB, baseLog *logger.Logger) WorkoutStationRepo {
	repoLog := baseLog.With("repo", "WorkoutStationRepo")
	return &workoutStationRepo{db: db, log: repoLog}
}

func (r *workoutStationRepo) Create(ctx context.Context, tx *gorm.DB, stations []*types.WorkoutStation) ([]*types.WorkoutStation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(stations) == 0 {
		return []*types.WorkoutStation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *workoutStationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WorkoutStation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.WorkoutStation
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

func (r *workoutStationRepo) ListByPropertyID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]*types.WorkoutStation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.WorkoutStation
	if propertyID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("room ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workoutStationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.WorkoutStation{}).
		Where("id = ?", id).
		Updates(updates).Error
}
