// Package engage decides which units may fire each tick and resolves
// weapon arrivals. All probabilistic rolls draw from a single seeded
// RNG owned by the scenario, in pipeline order, so two runs from the
// same seed produce identical outcomes.
package engage

import (
	"fmt"
	"math/rand"

	"github.com/opsim/engine/internal/geo"
	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/sim/doctrine"
	"github.com/opsim/engine/internal/sim/relations"
)

// arrivalToleranceKm is the proximity within which a weapon detonates.
const arrivalToleranceKm = 1.0

// Firer is a platform eligible to engage this tick.
type Firer struct {
	Unit              *core.Unit
	Kind              core.UnitKind
	Weapons           []*core.Weapon
	EngagementRangeNm float64
}

// Candidate is a potential target.
type Candidate struct {
	Unit *core.Unit
	Kind core.UnitKind
}

// Resolver evaluates engagement eligibility and weapon outcomes.
type Resolver struct {
	rng       *rand.Rand
	relations *relations.Store
	doctrines *doctrine.Store
}

// NewResolver creates a resolver sharing the scenario's RNG.
func NewResolver(rng *rand.Rand, rel *relations.Store, doc *doctrine.Store) *Resolver {
	return &Resolver{rng: rng, relations: rel, doctrines: doc}
}

// MayAttack reports whether the side's doctrine allows the given platform
// class to engage autonomously.
func (r *Resolver) MayAttack(sideID string, kind core.UnitKind) bool {
	d := r.doctrines.Get(sideID)
	switch kind {
	case core.KindAircraft:
		return d.AircraftAttackHostile
	case core.KindShip:
		return d.ShipAttackHostile
	case core.KindFacility:
		return d.SAMAttackHostile
	default:
		return false
	}
}

// SelectTarget picks the engagement target for a firer: the nearest
// hostile candidate within engagement range, ties broken by lowest unit
// ID. Returns nil when nothing qualifies. Candidates must be supplied in
// a deterministic order.
func (r *Resolver) SelectTarget(f Firer, candidates []Candidate) *Candidate {
	maxKm := geo.NmToKm(f.EngagementRangeNm)
	var best *Candidate
	bestKm := 0.0
	for i := range candidates {
		c := &candidates[i]
		if c.Unit.ID == f.Unit.ID {
			continue
		}
		if !r.relations.IsHostile(f.Unit.SideID, c.Unit.SideID) {
			continue
		}
		km := geo.Distance(f.Unit.Latitude, f.Unit.Longitude, c.Unit.Latitude, c.Unit.Longitude)
		if km > maxKm {
			continue
		}
		if best == nil || km < bestKm || (km == bestKm && c.Unit.ID < best.Unit.ID) {
			best = c
			bestKm = km
		}
	}
	return best
}

// Fire expends one round from the firer's first armed weapon and returns
// the launched weapon unit, positioned at the firer and routed at the
// target. When every carried weapon is empty the fire attempt fails with
// an ordnance-depletion log entry instead; inventory never goes negative.
func (r *Resolver) Fire(now int64, f Firer, target *core.Unit) (*core.Weapon, []core.LogEntry) {
	core.SortWeapons(f.Weapons)

	var armed *core.Weapon
	for _, w := range f.Weapons {
		if w.CurrentQuantity > 0 {
			armed = w
			break
		}
	}
	if armed == nil {
		return nil, []core.LogEntry{{
			Timestamp: now,
			Type:      core.LogOrdnanceDepleted,
			SideID:    f.Unit.SideID,
			Message:   fmt.Sprintf("%s cannot engage %s: ordnance depleted", f.Unit.Name, target.Name),
		}}
	}

	armed.CurrentQuantity--

	launched := &core.Weapon{
		Unit: core.Unit{
			ID:        fmt.Sprintf("%s-%s-%d", f.Unit.ID, armed.ID, now),
			Name:      armed.Name,
			SideID:    f.Unit.SideID,
			ClassName: armed.ClassName,
			Latitude:  f.Unit.Latitude,
			Longitude: f.Unit.Longitude,
			Altitude:  f.Unit.Altitude,
			SideColor: f.Unit.SideColor,
		},
		Kinematics: core.Kinematics{
			SpeedKnots:  armed.SpeedKnots,
			CurrentFuel: armed.MaxFuel,
			MaxFuel:     armed.MaxFuel,
			FuelRate:    armed.FuelRate,
			Route: []core.Waypoint{
				{Latitude: target.Latitude, Longitude: target.Longitude},
			},
		},
		CurrentQuantity: 1,
		MaxQuantity:     1,
		Lethality:       armed.Lethality,
		TargetID:        target.ID,
		FirerID:         f.Unit.ID,
	}

	return launched, []core.LogEntry{{
		Timestamp: now,
		Type:      core.LogWeaponLaunched,
		SideID:    f.Unit.SideID,
		Message:   fmt.Sprintf("%s launched %s at %s", f.Unit.Name, armed.Name, target.Name),
	}}
}

// AtTarget reports whether a weapon has closed within detonation range of
// its target.
func AtTarget(w *core.Weapon, target *core.Unit) bool {
	return geo.Distance(w.Latitude, w.Longitude, target.Latitude, target.Longitude) < arrivalToleranceKm
}

// RollHit samples the weapon's lethality once. The caller must invoke it
// exactly once per arrival, in pipeline order.
func (r *Resolver) RollHit(w *core.Weapon) bool {
	return r.rng.Float64() < w.Lethality
}

// PointsFor returns the score awarded to a side for destroying a unit of
// the given kind.
func PointsFor(kind core.UnitKind) int {
	switch kind {
	case core.KindAircraft:
		return 10
	case core.KindShip:
		return 25
	case core.KindFacility:
		return 15
	case core.KindAirbase:
		return 30
	default:
		return 2
	}
}
