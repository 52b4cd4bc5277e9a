package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
)

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h failingHandler) WithGroup(string) slog.Handler           { return h }

func TestMultiHandlerFansOutPastFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMultiHandler(failingHandler{}, NewJSONHandler(&buf, "production")))

	logger.Info("report created", "report_id", "r1")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "report created" || rec["report_id"] != "r1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := dbtest.Open(t)
	h := newPGHandler(db, time.Hour)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("image release failed",
		"action", "delete_report",
		"report_id", "r-42",
		"user_id", "u-7",
		"image_ref", "items/a.png",
		"error", errors.New("bucket unavailable"),
	)
	h.Stop()

	var logs []models.SystemLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 persisted log, got %d", len(logs))
	}
	got := logs[0]
	if got.Level != "ERROR" || got.RequestID != "req-1" || got.Action != "delete_report" {
		t.Fatalf("unexpected columns: %+v", got)
	}
	if got.ReportID == nil || *got.ReportID != "r-42" || got.UserID == nil || *got.UserID != "u-7" {
		t.Fatalf("unexpected ids: report=%v user=%v", got.ReportID, got.UserID)
	}
	if got.Error != "bucket unavailable" {
		t.Fatalf("error = %q", got.Error)
	}
	if !strings.Contains(string(got.Extra), "items/a.png") {
		t.Fatalf("extra missing image_ref: %s", got.Extra)
	}
}

func TestPurge(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Now()
	for _, ts := range []time.Time{now.AddDate(0, 0, -40), now.AddDate(0, 0, -31), now} {
		if err := db.Create(&models.SystemLog{Timestamp: ts, Level: "ERROR", Message: "x"}).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	deleted, err := Purge(db, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
}
