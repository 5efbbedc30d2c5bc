package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SurfaceKind identifies which display surface a station drives.
type SurfaceKind string

const (
	SurfaceTV     SurfaceKind = "tv"
	SurfaceTablet SurfaceKind = "tablet"
	SurfaceRemote SurfaceKind = "remote"
)

func ValidSurface(s SurfaceKind) bool {
	switch s {
	case SurfaceTV, SurfaceTablet, SurfaceRemote:
		return true
	}
	return false
}

// WorkoutStation is a registered kiosk/room device. Displays authenticate
// as a station via a pairing code; only the bcrypt hash is stored.
type WorkoutStation struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"property_id"`
	Property        *Property      `gorm:"constraint:OnDelete:CASCADE;foreignKey:PropertyID;references:ID" json:"property,omitempty"`
	Room            string         `gorm:"not null;column:room" json:"room"`
	Surface         SurfaceKind    `gorm:"not null;column:surface" json:"surface"`
	PairingCodeHash string         `gorm:"not null;column:pairing_code_hash" json:"-"`
	PairedAt        *time.Time     `gorm:"column:paired_at" json:"paired_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (WorkoutStation) TableName() string { return "workout_station" }

func (s *WorkoutStation) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
