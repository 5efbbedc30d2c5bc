package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LifecycleStatus is the session-level state: where the booking as a whole
// stands. Distinct from IntervalPhase, which tracks the countdown of a
// single exercise.
type LifecycleStatus string

const (
	LifecycleIdle    LifecycleStatus = "idle"
	LifecycleTesting LifecycleStatus = "testing"
	LifecycleReady   LifecycleStatus = "ready"
	LifecycleRunning LifecycleStatus = "running"
	LifecyclePaused  LifecycleStatus = "paused"
	LifecycleDone    LifecycleStatus = "done"
)

// IntervalPhase is the per-exercise timer sub-state shown on displays.
type IntervalPhase string

const (
	PhasePrep     IntervalPhase = "prep"
	PhaseWork     IntervalPhase = "work"
	PhaseRest     IntervalPhase = "rest"
	PhaseComplete IntervalPhase = "complete"
)

// WorkoutSession is the single shared mutable row per active room/kiosk
// booking. The database row is the source of truth; every display copy is
// a cache resynced from the change feed.
//
// Revision is a monotonic optimistic-concurrency token: writers update
// with WHERE revision = ? and increment it, so a stale read cannot
// silently clobber a concurrent write.
type WorkoutSession struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"property_id"`
	Property        *Property       `gorm:"constraint:OnDelete:CASCADE;foreignKey:PropertyID;references:ID" json:"property,omitempty"`
	StationID       *uuid.UUID      `gorm:"type:uuid;index" json:"station_id,omitempty"`
	Station         *WorkoutStation `gorm:"constraint:OnDelete:SET NULL;foreignKey:StationID;references:ID" json:"station,omitempty"`
	LifecycleStatus LifecycleStatus `gorm:"not null;column:lifecycle_status;index" json:"lifecycle_status"`
	IntervalPhase   IntervalPhase   `gorm:"not null;column:interval_phase" json:"interval_phase"`
	TemplateSlug    *string         `gorm:"column:template_slug" json:"template_slug,omitempty"`
	CurrentBlock    int             `gorm:"not null;column:current_block" json:"current_block"`
	CurrentExercise int             `gorm:"not null;column:current_exercise" json:"current_exercise"`
	Adaptations     datatypes.JSON  `gorm:"type:jsonb;column:adaptations" json:"adaptations"`
	StartedAt       *time.Time      `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt         *time.Time      `gorm:"column:ended_at" json:"ended_at,omitempty"`
	Revision        int64           `gorm:"not null;column:revision" json:"revision"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (WorkoutSession) TableName() string { return "workout_session" }

func (s *WorkoutSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
