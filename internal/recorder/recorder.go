// Package recorder captures per-tick scenario snapshots and plays them
// back. Playback never re-invokes the live simulation: it replays the
// captured, immutable steps, so a recording replays identically no
// matter how the engine changes after it was taken.
package recorder

import (
	"encoding/json"
	"fmt"

	"github.com/opsim/engine/internal/model/core"
)

// Recorder accumulates one Step per tick and exports the full recording
// as a single JSON document.
type Recorder struct {
	info  core.RecordingInfo
	steps []core.Step
}

// New creates a recorder with the given metadata.
func New(info core.RecordingInfo) *Recorder {
	return &Recorder{info: info}
}

// Capture appends one step. Callers pass deep-copied snapshots; the
// recorder never reaches back into live state.
func (r *Recorder) Capture(step core.Step) {
	r.steps = append(r.steps, step)
}

// Len returns the number of captured steps.
func (r *Recorder) Len() int {
	return len(r.steps)
}

// Recording returns the accumulated recording.
func (r *Recorder) Recording() core.Recording {
	return core.Recording{Info: r.info, Steps: r.steps}
}

// Export serializes the recording as a single JSON document.
func (r *Recorder) Export() ([]byte, error) {
	data, err := json.Marshal(r.Recording())
	if err != nil {
		return nil, fmt.Errorf("exporting recording: %w", err)
	}
	return data, nil
}
