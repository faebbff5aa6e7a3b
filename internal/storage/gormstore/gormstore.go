// Package gormstore implements the storage.Backend interface on top of a
// GORM database handle. The SQLite and Postgres backends wrap it via
// composition; the only driver-specific concerns live in those packages.
package gormstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/opsim/engine/internal/model/core"
)

// ErrNoRecording is returned when no recording has been started.
var ErrNoRecording = errors.New("no recording in progress")

// DatabaseModels lists the structs migrated into the schema.
var DatabaseModels = []interface{}{
	&Recording{},
	&Step{},
	&LogEntry{},
}

// Recording is the recording metadata table.
type Recording struct {
	gorm.Model
	Name         string `json:"name" gorm:"size:255;index"`
	ScenarioID   string `json:"scenarioId" gorm:"size:127"`
	ScenarioName string `json:"scenarioName" gorm:"size:255"`
	StartTime    int64  `json:"startTime"`
}

// Step holds one full snapshot, serialized as a JSON column. Snapshots
// are opaque to SQL; the engine deserializes them back into typed steps.
type Step struct {
	gorm.Model
	RecordingID uint           `json:"recordingId" gorm:"index:idx_step_recording_id"`
	CurrentTime int64          `json:"currentTime" gorm:"index"`
	Snapshot    datatypes.JSON `json:"snapshot"`
}

// LogEntry is one simulation log row.
type LogEntry struct {
	gorm.Model
	RecordingID uint   `json:"recordingId" gorm:"index:idx_logentry_recording_id"`
	EntryID     uint   `json:"entryId"`
	Timestamp   int64  `json:"timestamp" gorm:"index"`
	Type        string `json:"type" gorm:"size:63"`
	SideID      string `json:"sideId" gorm:"size:127"`
	Message     string `json:"message" gorm:"size:1023"`
}

// Backend persists recordings through GORM.
type Backend struct {
	db      *gorm.DB
	current *Recording
}

// New creates a GORM storage backend over an open database handle.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// DB exposes the underlying handle for driver-specific wrappers.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartRecording inserts the recording row all steps attach to.
func (b *Backend) StartRecording(info core.RecordingInfo) error {
	rec := &Recording{
		Name:         info.Name,
		ScenarioID:   info.ScenarioID,
		ScenarioName: info.ScenarioName,
		StartTime:    info.StartTime,
	}
	if err := b.db.Create(rec).Error; err != nil {
		return fmt.Errorf("creating recording: %w", err)
	}
	b.current = rec
	return nil
}

// CurrentRecordingID reports the database ID of the active recording,
// or zero when none is in progress.
func (b *Backend) CurrentRecordingID() uint {
	if b.current == nil {
		return 0
	}
	return b.current.ID
}

// EndRecording closes out the active recording.
func (b *Backend) EndRecording() error {
	if b.current == nil {
		return ErrNoRecording
	}
	b.current = nil
	return nil
}

// RecordStep persists one snapshot step.
func (b *Backend) RecordStep(step core.Step) error {
	if b.current == nil {
		return ErrNoRecording
	}
	snapshot, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("marshalling step: %w", err)
	}
	row := &Step{
		RecordingID: b.current.ID,
		CurrentTime: step.CurrentTime,
		Snapshot:    datatypes.JSON(snapshot),
	}
	if err := b.db.Create(row).Error; err != nil {
		return fmt.Errorf("persisting step: %w", err)
	}
	return nil
}

// RecordLogEntries persists the tick's log entries.
func (b *Backend) RecordLogEntries(entries []core.LogEntry) error {
	if b.current == nil {
		return ErrNoRecording
	}
	if len(entries) == 0 {
		return nil
	}
	rows := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LogEntry{
			RecordingID: b.current.ID,
			EntryID:     e.ID,
			Timestamp:   e.Timestamp,
			Type:        string(e.Type),
			SideID:      e.SideID,
			Message:     e.Message,
		})
	}
	if err := b.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("persisting log entries: %w", err)
	}
	return nil
}

// LoadRecording reads a stored recording back by name, deserializing
// each step snapshot into the typed model.
func (b *Backend) LoadRecording(name string) (*core.Recording, error) {
	var rec Recording
	if err := b.db.Where("name = ?", name).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("loading recording %q: %w", name, err)
	}

	var rows []Step
	if err := b.db.Where("recording_id = ?", rec.ID).Order("current_time asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading steps for %q: %w", name, err)
	}

	out := &core.Recording{
		Info: core.RecordingInfo{
			Name:         rec.Name,
			ScenarioID:   rec.ScenarioID,
			ScenarioName: rec.ScenarioName,
			StartTime:    rec.StartTime,
		},
	}
	for _, row := range rows {
		var step core.Step
		if err := json.Unmarshal(row.Snapshot, &step); err != nil {
			// corrupt rows are skipped, matching playback validation
			continue
		}
		out.Steps = append(out.Steps, step)
	}
	return out, nil
}
