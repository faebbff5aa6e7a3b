package cache

import (
	"testing"

	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/recorder"
)

func testPlayer(t *testing.T) *recorder.Player {
	t.Helper()
	p, err := recorder.NewPlayer(core.Recording{Steps: []core.Step{{CurrentTime: 60}}})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPlayerCache_GetSet(t *testing.T) {
	c := NewPlayerCache()
	if _, ok := c.Get("rec1"); ok {
		t.Errorf("empty cache returned a player")
	}

	p := testPlayer(t)
	c.Set("rec1", p)
	got, ok := c.Get("rec1")
	if !ok || got != p {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestPlayerCache_Delete(t *testing.T) {
	c := NewPlayerCache()
	c.Set("rec1", testPlayer(t))
	c.Delete("rec1")
	if _, ok := c.Get("rec1"); ok {
		t.Errorf("player survived Delete")
	}
	// Deleting a missing entry is a no-op.
	c.Delete("rec2")
}

func TestPlayerCache_Reset(t *testing.T) {
	c := NewPlayerCache()
	c.Set("rec1", testPlayer(t))
	c.Set("rec2", testPlayer(t))
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len = %d after Reset, want 0", c.Len())
	}
}
