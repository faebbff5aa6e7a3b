// internal/storage/gormstore/gormstore_test.go
package gormstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/opsim/engine/internal/database"
	"github.com/opsim/engine/internal/model/core"
)

func testBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDBStandalone(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	b := New(db)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend_RequiresActiveRecording(t *testing.T) {
	b := testBackend(t)
	if err := b.RecordStep(core.Step{}); !errors.Is(err, ErrNoRecording) {
		t.Errorf("RecordStep err = %v, want ErrNoRecording", err)
	}
	if err := b.RecordLogEntries([]core.LogEntry{{ID: 1}}); !errors.Is(err, ErrNoRecording) {
		t.Errorf("RecordLogEntries err = %v, want ErrNoRecording", err)
	}
	if err := b.EndRecording(); !errors.Is(err, ErrNoRecording) {
		t.Errorf("EndRecording err = %v, want ErrNoRecording", err)
	}
	if b.CurrentRecordingID() != 0 {
		t.Errorf("CurrentRecordingID = %d, want 0", b.CurrentRecordingID())
	}
}

func TestBackend_RecordAndLoadRoundTrip(t *testing.T) {
	b := testBackend(t)
	info := core.RecordingInfo{
		Name:         "rec1",
		ScenarioID:   "scn1",
		ScenarioName: "Test Scenario",
		StartTime:    1000,
	}
	if err := b.StartRecording(info); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if b.CurrentRecordingID() == 0 {
		t.Fatalf("no recording ID after StartRecording")
	}

	steps := []core.Step{
		{CurrentTime: 60, Aircraft: []core.Aircraft{{Unit: core.Unit{ID: "blue1", SideID: "blue"}}}},
		{CurrentTime: 120},
	}
	for _, s := range steps {
		if err := b.RecordStep(s); err != nil {
			t.Fatalf("RecordStep: %v", err)
		}
	}
	if err := b.RecordLogEntries([]core.LogEntry{
		{ID: 1, Timestamp: 60, Type: core.LogWeaponLaunched, SideID: "blue", Message: "launch"},
	}); err != nil {
		t.Fatalf("RecordLogEntries: %v", err)
	}
	if err := b.EndRecording(); err != nil {
		t.Fatalf("EndRecording: %v", err)
	}

	rec, err := b.LoadRecording("rec1")
	if err != nil {
		t.Fatalf("LoadRecording: %v", err)
	}
	if rec.Info != info {
		t.Errorf("Info = %+v, want %+v", rec.Info, info)
	}
	if len(rec.Steps) != 2 {
		t.Fatalf("loaded %d steps, want 2", len(rec.Steps))
	}
	if rec.Steps[0].CurrentTime != 60 || rec.Steps[1].CurrentTime != 120 {
		t.Errorf("steps out of order: %d, %d", rec.Steps[0].CurrentTime, rec.Steps[1].CurrentTime)
	}
	if len(rec.Steps[0].Aircraft) != 1 || rec.Steps[0].Aircraft[0].ID != "blue1" {
		t.Errorf("snapshot content lost: %+v", rec.Steps[0])
	}
}

func TestBackend_LoadUnknownRecording(t *testing.T) {
	b := testBackend(t)
	if _, err := b.LoadRecording("nope"); err == nil {
		t.Fatalf("expected error for unknown recording")
	}
}

func TestBackend_EmptyLogBatchIsNoop(t *testing.T) {
	b := testBackend(t)
	if err := b.StartRecording(core.RecordingInfo{Name: "rec1"}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordLogEntries(nil); err != nil {
		t.Errorf("empty batch err = %v", err)
	}
}
