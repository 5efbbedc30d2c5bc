package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property is one hotel/tenant. Every station and session belongs to
// exactly one property.
type Property struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	Timezone  string         `gorm:"column:timezone" json:"timezone"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Property) TableName() string { return "property" }

func (p *Property) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
