// internal/recorder/player_test.go
package recorder

import (
	"errors"
	"testing"

	"github.com/opsim/engine/internal/model/core"
)

func recordedDocument(t *testing.T) []byte {
	t.Helper()
	r := New(core.RecordingInfo{Name: "rec1", ScenarioName: "Test"})
	for i := 1; i <= 3; i++ {
		r.Capture(core.Step{CurrentTime: int64(i * 60)})
	}
	data, err := r.Export()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestLoad_RoundTrip(t *testing.T) {
	p, err := Load(recordedDocument(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Info().Name != "rec1" {
		t.Errorf("Info.Name = %q", p.Info().Name)
	}
	if p.EndStepIndex() != 2 {
		t.Fatalf("EndStepIndex = %d, want 2", p.EndStepIndex())
	}
	if p.CurrentStep().CurrentTime != 60 {
		t.Errorf("first step time = %d, want 60", p.CurrentStep().CurrentTime)
	}
}

func TestLoad_DropsMalformedSteps(t *testing.T) {
	doc := `{
		"info": {"name": "rec1"},
		"steps": [
			{"currentTime": 60},
			"not a step",
			{"noMarker": true},
			{"currentTime": 120}
		]
	}`
	p, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := p.EndStepIndex() + 1; got != 2 {
		t.Fatalf("kept %d steps, want 2", got)
	}
	if p.TimeAt(1) != 120 {
		t.Errorf("TimeAt(1) = %d, want 120", p.TimeAt(1))
	}
}

func TestLoad_NoValidSteps(t *testing.T) {
	if _, err := Load([]byte(`{"info": {}, "steps": [{"noMarker": 1}]}`)); !errors.Is(err, ErrEmptyRecording) {
		t.Fatalf("err = %v, want ErrEmptyRecording", err)
	}
	if _, err := Load([]byte(`{not json`)); err == nil {
		t.Errorf("expected parse error")
	}
}

func TestNewPlayer_RequiresSteps(t *testing.T) {
	if _, err := NewPlayer(core.Recording{}); !errors.Is(err, ErrEmptyRecording) {
		t.Fatalf("err = %v, want ErrEmptyRecording", err)
	}
	p, err := NewPlayer(core.Recording{Steps: []core.Step{{CurrentTime: 60}}})
	if err != nil {
		t.Fatal(err)
	}
	if p.EndStepIndex() != 0 {
		t.Errorf("EndStepIndex = %d, want 0", p.EndStepIndex())
	}
}

func TestPlayer_SeekClamps(t *testing.T) {
	p, err := Load(recordedDocument(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Seek(-5); got != 0 {
		t.Errorf("Seek(-5) = %d, want 0", got)
	}
	if got := p.Seek(99); got != 2 {
		t.Errorf("Seek(99) = %d, want 2", got)
	}
	if got := p.Seek(1); got != 1 || p.CurrentStepIndex() != 1 {
		t.Errorf("Seek(1) = %d, index = %d", got, p.CurrentStepIndex())
	}
}

func TestPlayer_NextPreviousBounds(t *testing.T) {
	p, err := Load(recordedDocument(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Previous(); got != 0 {
		t.Errorf("Previous at start = %d, want 0", got)
	}
	p.Seek(2)
	if got := p.Next(); got != 2 {
		t.Errorf("Next at end = %d, want 2", got)
	}
}

func TestPlayer_PlayPause(t *testing.T) {
	p, err := Load(recordedDocument(t))
	if err != nil {
		t.Fatal(err)
	}
	if p.Playing() {
		t.Errorf("new player should be paused")
	}
	p.Play()
	if !p.Playing() {
		t.Errorf("Play did not start playback")
	}
	p.Pause()
	if p.Playing() {
		t.Errorf("Pause did not stop playback")
	}
}
