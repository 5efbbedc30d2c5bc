package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/types"
)

type WorkoutSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.WorkoutSession) ([]*types.WorkoutSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WorkoutSession, error)
	ListActiveByPropertyID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]*types.WorkoutSession, error)
	// UpdateWithRevision applies the partial update to the session row only
	// if its revision still matches, incrementing the revision in the same
	// statement. Returns false when the row was changed underneath the
	// caller (or no longer exists).
	UpdateWithRevision(ctx context.Context, tx *gorm.DB, id uuid.UUID, revision int64, updates map[string]any) (bool, error)
}

type workoutSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkoutSessionRepo(db *gorm.DB, baseLog *logger.Logger) WorkoutSessionRepo {
	repoLog := baseLog.With("repo", "WorkoutSessionRepo")
	return &workoutSessionRepo{db: db, log: repoLog}
}

func (r *workoutSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.WorkoutSession) ([]*types.WorkoutSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sessions) == 0 {
		return []*types.WorkoutSession{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *workoutSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WorkoutSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.WorkoutSession
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

func (r *workoutSessionRepo) ListActiveByPropertyID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]*types.WorkoutSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.WorkoutSession
	if propertyID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("property_id = ? AND lifecycle_status <> ?", propertyID, types.LifecycleDone).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workoutSessionRepo) UpdateWithRevision(ctx context.Context, tx *gorm.DB, id uuid.UUID, revision int64, updates map[string]any) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(updates) == 0 {
		return true, nil
	}

	patch := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		patch[k] = v
	}
	patch["revision"] = gorm.Expr("revision + 1")
	patch["updated_at"] = time.Now().UTC()

	res := transaction.WithContext(ctx).
		Model(&types.WorkoutSession{}).
		Where("id = ? AND revision = ?", id, revision).
		Updates(patch)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
