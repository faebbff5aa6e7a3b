// Package postgres implements the storage.Backend interface using
// GORM/PostgreSQL with internal queues and a background DB writer goroutine.
// Steps and log entries are buffered in memory and flushed in batches so a
// slow database never stalls the tick loop.
package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/opsim/engine/internal/database"
	"github.com/opsim/engine/internal/logging"
	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/queue"
	"github.com/opsim/engine/internal/storage/gormstore"
)

// queues holds the write queues for batch DB insertion.
type queues struct {
	Steps      *queue.Queue[gormstore.Step]
	LogEntries *queue.Queue[gormstore.LogEntry]
}

func newQueues() *queues {
	return &queues{
		Steps:      queue.New[gormstore.Step](),
		LogEntries: queue.New[gormstore.LogEntry](),
	}
}

// Backend wraps the GORM backend with queue-based batch writes.
type Backend struct {
	*gormstore.Backend
	log      *logging.SlogManager
	queues   *queues
	stopChan chan struct{}
	dbReady  bool
}

// New creates a new Postgres storage backend over its own connection,
// configured from viper db.* keys.
func New(logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetPostgresDBStandalone()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	return &Backend{
		Backend: gormstore.New(db),
		log:     logManager,
	}, nil
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if err := b.Backend.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true

	b.startDBWriter()
	return nil
}

// Close flushes what it can and stops the DB writer goroutine.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	return b.Backend.Close()
}

// RecordStep serializes the snapshot and pushes it to the write queue.
func (b *Backend) RecordStep(step core.Step) error {
	if b.CurrentRecordingID() == 0 {
		return gormstore.ErrNoRecording
	}
	snapshot, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("marshalling step: %w", err)
	}
	b.queues.Steps.Push(gormstore.Step{
		CurrentTime: step.CurrentTime,
		Snapshot:    datatypes.JSON(snapshot),
	})
	return nil
}

// RecordLogEntries pushes the tick's log entries to the write queue.
func (b *Backend) RecordLogEntries(entries []core.LogEntry) error {
	if b.CurrentRecordingID() == 0 {
		return gormstore.ErrNoRecording
	}
	for _, e := range entries {
		b.queues.LogEntries.Push(gormstore.LogEntry{
			EntryID:   e.ID,
			Timestamp: e.Timestamp,
			Type:      string(e.Type),
			SideID:    e.SideID,
			Message:   e.Message,
		})
	}
	return nil
}

// writeQueue writes all items from a queue to the database in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB, stamping each row with the active recording ID.
func (b *Backend) startDBWriter() {
	log := b.log.WriteLog

	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			default:
			}

			if !b.dbReady {
				time.Sleep(1 * time.Second)
				continue
			}

			// Read the recording ID once per write cycle
			recordingID := b.CurrentRecordingID()

			stampSteps := func(items []gormstore.Step) {
				for i := range items {
					if items[i].RecordingID == 0 {
						items[i].RecordingID = recordingID
					}
				}
			}
			stampLogEntries := func(items []gormstore.LogEntry) {
				for i := range items {
					if items[i].RecordingID == 0 {
						items[i].RecordingID = recordingID
					}
				}
			}

			writeQueue(b.DB(), b.queues.Steps, "steps", log, stampSteps)
			writeQueue(b.DB(), b.queues.LogEntries, "log entries", log, stampLogEntries)

			time.Sleep(2 * time.Second)
		}
	}()
}
