package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/types"
)

// SessionEventRepo writes and reads the append-only audit log. There is
// deliberately no update or delete method.
type SessionEventRepo interface {
	Append(ctx context.Context, tx *gorm.DB, events []*types.SessionEvent) ([]*types.SessionEvent, error)
	ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*types.SessionEvent, error)
	CountBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error)
}

type sessionEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionEventRepo(db *gorm.DB, baseLog *logger.Logger) SessionEventRepo {
	repoLog := baseLog.With("repo", "SessionEventRepo")
	return &sessionEventRepo{db: db, log: repoLog}
}

func (r *sessionEventRepo) Append(ctx context.Context, tx *gorm.DB, events []*types.SessionEvent) ([]*types.SessionEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(events) == 0 {
		return []*types.SessionEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *sessionEventRepo) ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*types.SessionEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SessionEvent
	if sessionID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionEventRepo) CountBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if sessionID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.SessionEvent{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
