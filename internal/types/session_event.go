package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionEvent is one row per accepted client action. The log is
// append-only: rows are never updated or deleted, so there is no soft
// delete column.
type SessionEvent struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"session_id"`
	Session   *WorkoutSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	Event     string          `gorm:"not null;column:event;index" json:"event"`
	Payload   datatypes.JSON  `gorm:"type:jsonb;column:payload" json:"payload"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

func (SessionEvent) TableName() string { return "session_event" }

func (e *SessionEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
