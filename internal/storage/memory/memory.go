// internal/storage/memory/memory.go
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/opsim/engine/internal/model/core"
)

// ErrNoRecording is returned when no recording has been started.
var ErrNoRecording = errors.New("no recording in progress")

// Backend stores the active recording in memory and exports to JSON.
type Backend struct {
	mu      sync.RWMutex
	info    *core.RecordingInfo
	ended   bool
	steps   []core.Step
	entries []core.LogEntry
}

// New creates a new memory backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// StartRecording begins a new recording, discarding any previous data.
func (b *Backend) StartRecording(info core.RecordingInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.info = &info
	b.ended = false
	b.steps = nil
	b.entries = nil
	return nil
}

// EndRecording finalizes the recording. The data stays resident for
// Export until the next StartRecording, but no further steps are
// accepted.
func (b *Backend) EndRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.info == nil || b.ended {
		return ErrNoRecording
	}
	b.ended = true
	return nil
}

// RecordStep appends one snapshot step.
func (b *Backend) RecordStep(step core.Step) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.info == nil || b.ended {
		return ErrNoRecording
	}
	b.steps = append(b.steps, step)
	return nil
}

// RecordLogEntries appends the tick's log entries.
func (b *Backend) RecordLogEntries(entries []core.LogEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.info == nil || b.ended {
		return ErrNoRecording
	}
	b.entries = append(b.entries, entries...)
	return nil
}

// StepCount returns the number of captured steps.
func (b *Backend) StepCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.steps)
}

// LogEntries returns the captured log entries.
func (b *Backend) LogEntries() []core.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Export serializes the recording as a single JSON document.
func (b *Backend) Export() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.info == nil {
		return nil, ErrNoRecording
	}
	rec := core.Recording{Info: *b.info, Steps: b.steps}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("exporting recording: %w", err)
	}
	return data, nil
}
