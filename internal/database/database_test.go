package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestMigrateAndPing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, model := range []interface{}{&models.User{}, &models.ItemReport{}, &models.Message{}, &models.RefreshToken{}, &models.SystemLog{}} {
		if !db.Migrator().HasTable(model) {
			t.Fatalf("table for %T not created", model)
		}
	}
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := Close(db); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := Ping(context.Background(), db); err == nil {
		t.Fatalf("expected ping after close to fail")
	}
}
