package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/suitewell/suitewell-backend/internal/db"
	"github.com/suitewell/suitewell-backend/internal/sse"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "suitewell_test.db")), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

// recordingEmitter captures feed messages for assertions.
type recordingEmitter struct {
	mu       sync.Mutex
	messages []sse.FeedMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg sse.FeedMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, msg)
}

func (e *recordingEmitter) byEvent(event sse.FeedEvent) []sse.FeedMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []sse.FeedMessage
	for _, m := range e.messages {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}
