package db

import (
	"gorm.io/gorm"

	"github.com/suitewell/suitewell-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Tenancy + device registry
		&types.Property{},
		&types.WorkoutStation{},

		// Session state machine
		&types.WorkoutSession{},
		&types.SessionEvent{},
	)
}
