// internal/recorder/recorder_test.go
package recorder

import (
	"encoding/json"
	"testing"

	"github.com/opsim/engine/internal/model/core"
)

func TestRecorder_CaptureAndExport(t *testing.T) {
	r := New(core.RecordingInfo{Name: "rec1", ScenarioID: "scn1"})
	if r.Len() != 0 {
		t.Fatalf("new recorder Len = %d", r.Len())
	}

	r.Capture(core.Step{CurrentTime: 60})
	r.Capture(core.Step{CurrentTime: 120})
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}

	data, err := r.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var rec core.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("exported document not valid JSON: %v", err)
	}
	if rec.Info.Name != "rec1" {
		t.Errorf("Info.Name = %q, want rec1", rec.Info.Name)
	}
	if len(rec.Steps) != 2 || rec.Steps[1].CurrentTime != 120 {
		t.Errorf("steps round trip: %+v", rec.Steps)
	}
}
