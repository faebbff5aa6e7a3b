// internal/storage/memory/memory_test.go
package memory

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/opsim/engine/internal/model/core"
)

func TestBackend_RequiresActiveRecording(t *testing.T) {
	b := New()
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordStep(core.Step{}); !errors.Is(err, ErrNoRecording) {
		t.Errorf("RecordStep err = %v, want ErrNoRecording", err)
	}
	if err := b.RecordLogEntries(nil); !errors.Is(err, ErrNoRecording) {
		t.Errorf("RecordLogEntries err = %v, want ErrNoRecording", err)
	}
	if err := b.EndRecording(); !errors.Is(err, ErrNoRecording) {
		t.Errorf("EndRecording err = %v, want ErrNoRecording", err)
	}
	if _, err := b.Export(); !errors.Is(err, ErrNoRecording) {
		t.Errorf("Export err = %v, want ErrNoRecording", err)
	}
}

func TestBackend_RecordAndExport(t *testing.T) {
	b := New()
	if err := b.StartRecording(core.RecordingInfo{Name: "rec1"}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordStep(core.Step{CurrentTime: 60}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordStep(core.Step{CurrentTime: 120}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordLogEntries([]core.LogEntry{{ID: 1, Type: core.LogOther}}); err != nil {
		t.Fatal(err)
	}
	if b.StepCount() != 2 {
		t.Errorf("StepCount = %d, want 2", b.StepCount())
	}
	if got := b.LogEntries(); len(got) != 1 {
		t.Errorf("LogEntries = %v, want one entry", got)
	}
	if err := b.EndRecording(); err != nil {
		t.Fatal(err)
	}

	data, err := b.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var rec core.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("export not valid JSON: %v", err)
	}
	if rec.Info.Name != "rec1" || len(rec.Steps) != 2 {
		t.Errorf("exported recording = %+v", rec.Info)
	}
}

func TestBackend_StartRecordingResets(t *testing.T) {
	b := New()
	if err := b.StartRecording(core.RecordingInfo{Name: "rec1"}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordStep(core.Step{CurrentTime: 60}); err != nil {
		t.Fatal(err)
	}
	if err := b.StartRecording(core.RecordingInfo{Name: "rec2"}); err != nil {
		t.Fatal(err)
	}
	if b.StepCount() != 0 {
		t.Errorf("StepCount = %d after new recording, want 0", b.StepCount())
	}
}
