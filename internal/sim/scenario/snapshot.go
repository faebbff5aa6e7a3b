package scenario

import (
	"fmt"

	"github.com/opsim/engine/internal/geo"
	"github.com/opsim/engine/internal/model/core"
)

// Snapshot returns a deep copy of the scenario's unit collections at the
// current time. Recorder steps built from snapshots stay immutable as
// the live scenario keeps ticking.
func (s *Scenario) Snapshot() core.Step {
	step := core.Step{
		CurrentTime:     s.CurrentTime,
		Aircraft:        make([]core.Aircraft, 0, len(s.Aircraft)),
		Ships:           make([]core.Ship, 0, len(s.Ships)),
		Facilities:      make([]core.Facility, 0, len(s.Facilities)),
		Airbases:        make([]core.Airbase, 0, len(s.Airbases)),
		Weapons:         make([]core.Weapon, 0, len(s.Weapons)),
		ReferencePoints: make([]core.ReferencePoint, 0, len(s.ReferencePoints)),
	}
	for _, a := range s.Aircraft {
		step.Aircraft = append(step.Aircraft, copyAircraft(a))
	}
	for _, sh := range s.Ships {
		step.Ships = append(step.Ships, copyShip(sh))
	}
	for _, f := range s.Facilities {
		step.Facilities = append(step.Facilities, copyFacility(f))
	}
	for _, b := range s.Airbases {
		step.Airbases = append(step.Airbases, copyAirbase(b))
	}
	for _, w := range s.Weapons {
		step.Weapons = append(step.Weapons, copyWeapon(w))
	}
	for _, rp := range s.ReferencePoints {
		c := *rp
		project(&c.Unit)
		step.ReferencePoints = append(step.ReferencePoints, c)
	}
	return step
}

// ToDocument exports the complete scenario state in the shape accepted by
// Load, for the transport boundary's post-tick broadcast.
func (s *Scenario) ToDocument() Document {
	step := s.Snapshot()
	doc := Document{
		ID:              s.ID,
		Name:            s.Name,
		CurrentTime:     s.CurrentTime,
		TickSeconds:     s.TickSeconds,
		Relationships:   make(map[string]SideRelations, len(s.Sides)),
		Doctrines:       make(map[string]core.Doctrine, len(s.Sides)),
		Aircraft:        step.Aircraft,
		Ships:           step.Ships,
		Facilities:      step.Facilities,
		Airbases:        step.Airbases,
		Weapons:         step.Weapons,
		ReferencePoints: step.ReferencePoints,
	}
	for _, side := range s.Sides {
		doc.Sides = append(doc.Sides, *side)
		doc.Doctrines[side.ID] = s.Doctrines.Get(side.ID)
		doc.Relationships[side.ID] = SideRelations{
			Hostiles: s.Relations.Hostiles(side.ID),
			Allies:   s.Relations.Allies(side.ID),
		}
	}
	return doc
}

// LaunchAircraft moves an aircraft out of an airbase's inventory into the
// airborne collection. Ownership is exclusive: the airframe leaves the
// base when it launches.
func (s *Scenario) LaunchAircraft(airbaseID, aircraftID string) error {
	for _, b := range s.Airbases {
		if b.ID != airbaseID {
			continue
		}
		for i, a := range b.Aircraft {
			if a.ID != aircraftID {
				continue
			}
			b.Aircraft = append(b.Aircraft[:i], b.Aircraft[i+1:]...)
			a.Latitude = b.Latitude
			a.Longitude = b.Longitude
			a.HomeBaseID = b.ID
			s.Aircraft = append(s.Aircraft, a)
			s.sortCollections()
			return nil
		}
		return fmt.Errorf("airbase %s does not hold aircraft %s", airbaseID, aircraftID)
	}
	return fmt.Errorf("unknown airbase: %s", airbaseID)
}

// project stamps the EPSG:3857 coordinates onto a snapshot copy.
func project(u *core.Unit) {
	u.MercatorX, u.MercatorY = geo.Project3857(u.Latitude, u.Longitude)
}

func copyWeapon(w *core.Weapon) core.Weapon {
	out := *w
	out.Route = append([]core.Waypoint(nil), w.Route...)
	project(&out.Unit)
	return out
}

func copyWeapons(ws []*core.Weapon) []*core.Weapon {
	out := make([]*core.Weapon, 0, len(ws))
	for _, w := range ws {
		c := copyWeapon(w)
		out = append(out, &c)
	}
	return out
}

func copyAircraft(a *core.Aircraft) core.Aircraft {
	out := *a
	out.Route = append([]core.Waypoint(nil), a.Route...)
	out.Weapons = copyWeapons(a.Weapons)
	project(&out.Unit)
	return out
}

func copyShip(sh *core.Ship) core.Ship {
	out := *sh
	out.Route = append([]core.Waypoint(nil), sh.Route...)
	out.Weapons = copyWeapons(sh.Weapons)
	out.Aircraft = make([]*core.Aircraft, 0, len(sh.Aircraft))
	for _, a := range sh.Aircraft {
		c := copyAircraft(a)
		out.Aircraft = append(out.Aircraft, &c)
	}
	project(&out.Unit)
	return out
}

func copyFacility(f *core.Facility) core.Facility {
	out := *f
	out.Weapons = copyWeapons(f.Weapons)
	project(&out.Unit)
	return out
}

func copyAirbase(b *core.Airbase) core.Airbase {
	out := *b
	out.Aircraft = make([]*core.Aircraft, 0, len(b.Aircraft))
	for _, a := range b.Aircraft {
		c := copyAircraft(a)
		out.Aircraft = append(out.Aircraft, &c)
	}
	project(&out.Unit)
	return out
}
