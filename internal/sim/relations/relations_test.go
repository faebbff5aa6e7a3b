// internal/sim/relations/relations_test.go
package relations

import (
	"reflect"
	"testing"
)

func TestStore_NeutralByDefault(t *testing.T) {
	s := NewStore()
	if s.IsHostile("blue", "red") {
		t.Errorf("empty store reports hostile")
	}
	if s.IsAlly("blue", "red") {
		t.Errorf("empty store reports ally")
	}
	if got := s.Hostiles("blue"); len(got) != 0 {
		t.Errorf("Hostiles = %v, want empty", got)
	}
}

func TestStore_HostileAndAllyAreMutuallyExclusive(t *testing.T) {
	s := NewStore()
	s.AddAlly("blue", "red")
	if !s.IsAlly("blue", "red") {
		t.Fatalf("ally relation not stored")
	}

	s.AddHostile("blue", "red")
	if !s.IsHostile("blue", "red") {
		t.Fatalf("hostile relation not stored")
	}
	if s.IsAlly("blue", "red") {
		t.Errorf("ally relation survived AddHostile")
	}

	s.AddAlly("blue", "red")
	if s.IsHostile("blue", "red") {
		t.Errorf("hostile relation survived AddAlly")
	}
}

func TestStore_SelfRelationIgnored(t *testing.T) {
	s := NewStore()
	s.AddHostile("blue", "blue")
	s.AddAlly("blue", "blue")
	if s.IsHostile("blue", "blue") || s.IsAlly("blue", "blue") {
		t.Errorf("side related to itself")
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.AddHostile("blue", "red")
	s.RemoveHostile("blue", "red")
	if s.IsHostile("blue", "red") {
		t.Errorf("hostile relation survived removal")
	}
	// Removing an unknown pair is a no-op.
	s.RemoveAlly("blue", "green")
}

func TestStore_Update(t *testing.T) {
	s := NewStore()
	s.AddHostile("blue", "green")
	s.Update("blue", []string{"red", "orange"}, []string{"green"})

	if got := s.Hostiles("blue"); !reflect.DeepEqual(got, []string{"orange", "red"}) {
		t.Errorf("Hostiles = %v, want [orange red]", got)
	}
	if got := s.Allies("blue"); !reflect.DeepEqual(got, []string{"green"}) {
		t.Errorf("Allies = %v, want [green]", got)
	}

	// A side listed in both slices ends up hostile.
	s.Update("blue", []string{"red"}, []string{"red"})
	if !s.IsHostile("blue", "red") || s.IsAlly("blue", "red") {
		t.Errorf("duplicated side should resolve hostile")
	}
}

func TestStore_DeleteSide(t *testing.T) {
	s := NewStore()
	s.AddHostile("blue", "red")
	s.AddAlly("green", "red")
	s.AddHostile("red", "blue")

	s.DeleteSide("red")
	if len(s.Hostiles("red")) != 0 {
		t.Errorf("deleted side still has relations")
	}
	if s.IsHostile("blue", "red") || s.IsAlly("green", "red") {
		t.Errorf("other sides still reference deleted side")
	}
	if s.IsHostile("blue", "red") {
		t.Errorf("stale hostile entry for deleted side")
	}
}
