package storage

import (
	"testing"

	"github.com/opsim/engine/internal/config"
	"github.com/opsim/engine/internal/logging"
	"github.com/opsim/engine/internal/storage/memory"
)

func TestNewBackend_Memory(t *testing.T) {
	b, err := NewBackend(config.StorageConfig{Type: "memory"}, logging.NewSlogManager())
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if _, ok := b.(*memory.Backend); !ok {
		t.Errorf("backend type = %T, want *memory.Backend", b)
	}
	if _, ok := b.(Exportable); !ok {
		t.Errorf("memory backend should be exportable")
	}
}

func TestNewBackend_UnknownType(t *testing.T) {
	if _, err := NewBackend(config.StorageConfig{Type: "etcd"}, logging.NewSlogManager()); err == nil {
		t.Fatalf("expected error for unknown backend type")
	}
}
