// internal/sim/engage/engage_test.go
package engage

import (
	"math/rand"
	"testing"

	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/sim/doctrine"
	"github.com/opsim/engine/internal/sim/relations"
)

func testResolver(seed int64) *Resolver {
	rel := relations.NewStore()
	rel.AddHostile("blue", "red")
	doc := doctrine.NewStore(core.DefaultDoctrine())
	return NewResolver(rand.New(rand.NewSource(seed)), rel, doc)
}

func testFirer(id string, lat, lon float64, weapons ...*core.Weapon) Firer {
	return Firer{
		Unit:              &core.Unit{ID: id, Name: id, SideID: "blue", Latitude: lat, Longitude: lon},
		Kind:              core.KindAircraft,
		Weapons:           weapons,
		EngagementRangeNm: 100,
	}
}

func candidate(id, sideID string, lat, lon float64) Candidate {
	return Candidate{
		Unit: &core.Unit{ID: id, Name: id, SideID: sideID, Latitude: lat, Longitude: lon},
		Kind: core.KindShip,
	}
}

func TestMayAttack(t *testing.T) {
	r := testResolver(1)
	if !r.MayAttack("blue", core.KindAircraft) {
		t.Errorf("default doctrine should allow aircraft attack")
	}
	if r.MayAttack("blue", core.KindWeapon) {
		t.Errorf("weapons are not attack platforms")
	}

	d := core.DefaultDoctrine()
	d.ShipAttackHostile = false
	doc := doctrine.NewStore(d)
	r2 := NewResolver(rand.New(rand.NewSource(1)), relations.NewStore(), doc)
	if r2.MayAttack("blue", core.KindShip) {
		t.Errorf("doctrine flag not consulted for ships")
	}
	if !r2.MayAttack("blue", core.KindFacility) {
		t.Errorf("SAM flag should still allow facilities")
	}
}

func TestSelectTarget_NearestHostileInRange(t *testing.T) {
	r := testResolver(1)
	f := testFirer("u1", 0, 0)
	candidates := []Candidate{
		candidate("far", "red", 0, 0.9),    // ~100km
		candidate("near", "red", 0, 0.3),   // ~33km
		candidate("friend", "blue", 0, 0.1),
		candidate("out", "red", 0, 10), // far outside range
	}
	got := r.SelectTarget(f, candidates)
	if got == nil || got.Unit.ID != "near" {
		t.Fatalf("SelectTarget = %v, want near", got)
	}
}

func TestSelectTarget_TieBrokenByLowestID(t *testing.T) {
	r := testResolver(1)
	f := testFirer("u1", 0, 0)
	candidates := []Candidate{
		candidate("b", "red", 0, 0.5),
		candidate("a", "red", 0, 0.5),
	}
	got := r.SelectTarget(f, candidates)
	if got == nil || got.Unit.ID != "a" {
		t.Fatalf("SelectTarget = %v, want a", got)
	}
}

func TestSelectTarget_NoHostiles(t *testing.T) {
	r := testResolver(1)
	f := testFirer("u1", 0, 0)
	candidates := []Candidate{
		candidate("friend", "blue", 0, 0.1),
		candidate("u1", "red", 0, 0.1), // self, never targeted
	}
	if got := r.SelectTarget(f, candidates); got != nil {
		t.Fatalf("SelectTarget = %v, want nil", got)
	}
}

func TestFire_DecrementsInventoryAndLaunches(t *testing.T) {
	r := testResolver(1)
	w := &core.Weapon{
		Unit:            core.Unit{ID: "w1", Name: "Harpoon", ClassName: "Harpoon"},
		Kinematics:      core.Kinematics{SpeedKnots: 460, MaxFuel: 100, FuelRate: 50},
		CurrentQuantity: 2,
		MaxQuantity:     4,
		Lethality:       0.8,
	}
	f := testFirer("u1", 0, 0, w)
	target := &core.Unit{ID: "t1", Name: "t1", SideID: "red", Latitude: 0, Longitude: 0.5}

	launched, entries := r.Fire(100, f, target)
	if launched == nil {
		t.Fatalf("expected a launched weapon")
	}
	if w.CurrentQuantity != 1 {
		t.Errorf("inventory = %d, want 1", w.CurrentQuantity)
	}
	if len(entries) != 1 || entries[0].Type != core.LogWeaponLaunched {
		t.Errorf("entries = %+v, want one WEAPON_LAUNCHED", entries)
	}
	if launched.TargetID != "t1" || launched.FirerID != "u1" {
		t.Errorf("launched weapon wiring: %+v", launched)
	}
	if launched.Latitude != 0 || launched.Longitude != 0 {
		t.Errorf("launched weapon should start at the firer")
	}
	if len(launched.Route) != 1 || launched.Route[0].Longitude != 0.5 {
		t.Errorf("launched weapon not routed at target: %v", launched.Route)
	}
	if launched.CurrentQuantity != 1 || launched.MaxQuantity != 1 {
		t.Errorf("launched weapon quantity = %d/%d, want 1/1", launched.CurrentQuantity, launched.MaxQuantity)
	}
}

func TestFire_OrdnanceDepleted(t *testing.T) {
	r := testResolver(1)
	w := &core.Weapon{Unit: core.Unit{ID: "w1", Name: "Harpoon"}, CurrentQuantity: 0}
	f := testFirer("u1", 0, 0, w)
	target := &core.Unit{ID: "t1", Name: "t1", SideID: "red"}

	launched, entries := r.Fire(100, f, target)
	if launched != nil {
		t.Fatalf("fired with empty inventory")
	}
	if len(entries) != 1 || entries[0].Type != core.LogOrdnanceDepleted {
		t.Fatalf("entries = %+v, want one ORDNANCE_DEPLETED", entries)
	}
	if w.CurrentQuantity != 0 {
		t.Errorf("inventory went negative: %d", w.CurrentQuantity)
	}
}

func TestFire_SkipsEmptyWeapons(t *testing.T) {
	r := testResolver(1)
	empty := &core.Weapon{Unit: core.Unit{ID: "w1", Name: "Empty"}, CurrentQuantity: 0}
	loaded := &core.Weapon{Unit: core.Unit{ID: "w2", Name: "Loaded"}, CurrentQuantity: 1, Lethality: 0.5}
	f := testFirer("u1", 0, 0, empty, loaded)
	target := &core.Unit{ID: "t1", Name: "t1", SideID: "red"}

	launched, _ := r.Fire(100, f, target)
	if launched == nil || launched.Name != "Loaded" {
		t.Fatalf("expected the armed weapon to fire, got %v", launched)
	}
	if loaded.CurrentQuantity != 0 {
		t.Errorf("armed weapon not decremented")
	}
}

func TestRollHit_Deterministic(t *testing.T) {
	w := &core.Weapon{Lethality: 0.5}
	a := testResolver(42)
	b := testResolver(42)
	for i := 0; i < 20; i++ {
		if a.RollHit(w) != b.RollHit(w) {
			t.Fatalf("seeded rolls diverged at %d", i)
		}
	}

	sure := testResolver(7)
	if !sure.RollHit(&core.Weapon{Lethality: 1.0}) {
		t.Errorf("lethality 1.0 must always hit")
	}
	if sure.RollHit(&core.Weapon{Lethality: 0.0}) {
		t.Errorf("lethality 0.0 must never hit")
	}
}

func TestAtTarget(t *testing.T) {
	w := &core.Weapon{Unit: core.Unit{Latitude: 0, Longitude: 0}}
	near := &core.Unit{Latitude: 0, Longitude: 0.005}
	far := &core.Unit{Latitude: 0, Longitude: 0.5}
	if !AtTarget(w, near) {
		t.Errorf("weapon within tolerance not at target")
	}
	if AtTarget(w, far) {
		t.Errorf("distant weapon reported at target")
	}
}

func TestPointsFor(t *testing.T) {
	if PointsFor(core.KindShip) <= PointsFor(core.KindAircraft) {
		t.Errorf("ships should score higher than aircraft")
	}
	if PointsFor(core.KindAirbase) != 30 {
		t.Errorf("PointsFor(airbase) = %d, want 30", PointsFor(core.KindAirbase))
	}
	if PointsFor(core.KindWeapon) != 2 {
		t.Errorf("PointsFor(weapon) = %d, want 2", PointsFor(core.KindWeapon))
	}
}
