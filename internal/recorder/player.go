package recorder

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opsim/engine/internal/model/core"
)

// ErrEmptyRecording is returned when a recording yields no usable steps.
var ErrEmptyRecording = errors.New("recording contains no valid steps")

// rawRecording defers step decoding so malformed steps can be skipped
// individually instead of failing the whole document.
type rawRecording struct {
	Info  core.RecordingInfo `json:"info"`
	Steps []json.RawMessage  `json:"steps"`
}

// Player steps through a loaded recording. The step index is always
// clamped into bounds; Next at the last step and Previous at the first
// are no-ops.
type Player struct {
	info    core.RecordingInfo
	steps   []core.Step
	index   int
	playing bool
}

// Load parses a recording document. Every step must deserialize to an
// object carrying the scenario marker (a currentTime field); steps that
// do not are dropped. A document with zero valid steps is rejected.
func Load(data []byte) (*Player, error) {
	var raw rawRecording
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing recording: %w", err)
	}

	steps := make([]core.Step, 0, len(raw.Steps))
	for _, rawStep := range raw.Steps {
		var marker map[string]json.RawMessage
		if err := json.Unmarshal(rawStep, &marker); err != nil {
			continue
		}
		if _, ok := marker["currentTime"]; !ok {
			continue
		}
		var step core.Step
		if err := json.Unmarshal(rawStep, &step); err != nil {
			continue
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, ErrEmptyRecording
	}

	return &Player{info: raw.Info, steps: steps}, nil
}

// NewPlayer builds a player over an already-decoded recording, such as
// one read back from SQL storage.
func NewPlayer(rec core.Recording) (*Player, error) {
	if len(rec.Steps) == 0 {
		return nil, ErrEmptyRecording
	}
	return &Player{info: rec.Info, steps: rec.Steps}, nil
}

// Info returns the recording metadata.
func (p *Player) Info() core.RecordingInfo {
	return p.info
}

// CurrentStepIndex returns the current playback position.
func (p *Player) CurrentStepIndex() int {
	return p.index
}

// EndStepIndex returns the index of the last step.
func (p *Player) EndStepIndex() int {
	return len(p.steps) - 1
}

// CurrentStep returns the step at the playback position.
func (p *Player) CurrentStep() core.Step {
	return p.steps[p.index]
}

// Seek moves the playback position, clamping into [0, EndStepIndex].
func (p *Player) Seek(index int) int {
	if index < 0 {
		index = 0
	}
	if index > p.EndStepIndex() {
		index = p.EndStepIndex()
	}
	p.index = index
	return p.index
}

// Next advances one step; a no-op at the last step.
func (p *Player) Next() int {
	return p.Seek(p.index + 1)
}

// Previous steps back one step; a no-op at the first step.
func (p *Player) Previous() int {
	return p.Seek(p.index - 1)
}

// TimeAt returns the scenario time of the step at the given index,
// clamped into bounds.
func (p *Player) TimeAt(index int) int64 {
	if index < 0 {
		index = 0
	}
	if index > p.EndStepIndex() {
		index = p.EndStepIndex()
	}
	return p.steps[index].CurrentTime
}

// Play marks the player as playing.
func (p *Player) Play() {
	p.playing = true
}

// Pause marks the player as paused.
func (p *Player) Pause() {
	p.playing = false
}

// Playing reports the paused/playing status.
func (p *Player) Playing() bool {
	return p.playing
}
