package influx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

func TestTickPoint(t *testing.T) {
	p := TickPoint("scn1", 180, 2500*time.Microsecond, 12, 3)
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	if !strings.HasPrefix(line, "tick,scenario=scn1 ") {
		t.Errorf("line protocol = %q", line)
	}
	for _, field := range []string{"simTime=180i", "durationUs=2500i", "units=12i", "logEntries=3i"} {
		if !strings.Contains(line, field) {
			t.Errorf("line %q missing field %s", line, field)
		}
	}
}

func TestWritePoint_BackupFallback(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.Nop(), "")
	m.BackupWriter = gzip.NewWriter(&buf)

	if err := m.WriteTick(context.Background(), "scn1", 60, time.Millisecond, 5, 1); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if err := m.BackupWriter.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("backup not gzip: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tick,scenario=scn1") {
		t.Errorf("backup content = %q", data)
	}
}

func TestWritePoint_NoClientNoBackup(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	if err := m.WriteTick(context.Background(), "scn1", 60, time.Millisecond, 5, 1); err == nil {
		t.Errorf("expected error with neither client nor backup writer")
	}
}
