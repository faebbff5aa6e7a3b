// internal/storage/storage.go
package storage

import "github.com/opsim/engine/internal/model/core"

// Backend is the interface all recording storage implementations satisfy.
// One recording is open at a time; steps and log entries stream in per
// tick between StartRecording and EndRecording.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Recording management
	StartRecording(info core.RecordingInfo) error
	EndRecording() error

	// Per-tick capture
	RecordStep(step core.Step) error
	RecordLogEntries(entries []core.LogEntry) error
}

// Exportable is an optional interface for backends that can produce the
// recording as a single serialized document for the web frontend.
type Exportable interface {
	Export() ([]byte, error)
}

// Loadable is an optional interface for backends that can read a stored
// recording back.
type Loadable interface {
	LoadRecording(name string) (*core.Recording, error)
}
