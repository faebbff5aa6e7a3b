// internal/sim/doctrine/doctrine_test.go
package doctrine

import (
	"testing"

	"github.com/opsim/engine/internal/model/core"
)

func TestStore_UnknownSideGetsDefaults(t *testing.T) {
	defaults := core.DefaultDoctrine()
	s := NewStore(defaults)
	if got := s.Get("nobody"); got != defaults {
		t.Errorf("Get(unknown) = %+v, want defaults", got)
	}
}

func TestStore_RegisterAndSet(t *testing.T) {
	s := NewStore(core.DefaultDoctrine())
	s.Register("blue")
	if got := s.Get("blue"); !got.AircraftAttackHostile {
		t.Fatalf("registered side missing default flags: %+v", got)
	}

	d := core.DefaultDoctrine()
	d.AircraftAttackHostile = false
	d.ShipAttackHostile = false
	s.Set("blue", d)

	got := s.Get("blue")
	if got.AircraftAttackHostile || got.ShipAttackHostile {
		t.Errorf("Set did not replace record: %+v", got)
	}
	if !got.SAMAttackHostile {
		t.Errorf("unrelated flag lost on Set: %+v", got)
	}
}

func TestStore_Delete(t *testing.T) {
	defaults := core.DefaultDoctrine()
	s := NewStore(defaults)
	d := defaults
	d.AircraftChaseHostile = false
	s.Set("blue", d)
	s.Delete("blue")
	if got := s.Get("blue"); got != defaults {
		t.Errorf("deleted side should fall back to defaults, got %+v", got)
	}
}
