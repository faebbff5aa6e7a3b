// Package scenario owns the authoritative per-tick update sequence:
// advance positions, evaluate doctrine, resolve engagements, update
// missions, emit log entries. A tick is atomic from the caller's view;
// unit removals requested mid-tick are deferred to the next boundary.
package scenario

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/queue"
	"github.com/opsim/engine/internal/sim/doctrine"
	"github.com/opsim/engine/internal/sim/engage"
	"github.com/opsim/engine/internal/sim/mission"
	"github.com/opsim/engine/internal/sim/relations"
)

// ErrNoSides is returned when a scenario document defines no sides.
var ErrNoSides = errors.New("scenario has no sides")

// SideRelations is the per-side relationship block in a scenario document.
type SideRelations struct {
	Hostiles []string `json:"hostiles"`
	Allies   []string `json:"allies"`
}

// Document is the complete scenario state accepted at the transport
// boundary and produced back after each tick.
type Document struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CurrentTime int64   `json:"currentTime"`
	TickSeconds float64 `json:"tickSeconds"`
	RandomSeed  int64   `json:"randomSeed"`

	Sides         []core.Side              `json:"sides"`
	Relationships map[string]SideRelations `json:"relationships"`
	Doctrines     map[string]core.Doctrine `json:"doctrines"`

	Aircraft        []core.Aircraft       `json:"aircraft"`
	Ships           []core.Ship           `json:"ships"`
	Facilities      []core.Facility       `json:"facilities"`
	Airbases        []core.Airbase        `json:"airbases"`
	Weapons         []core.Weapon         `json:"weapons"`
	ReferencePoints []core.ReferencePoint `json:"referencePoints"`
}

// Scenario is the live simulation state.
type Scenario struct {
	ID          string
	Name        string
	CurrentTime int64
	TickSeconds float64

	Sides           []*core.Side
	Aircraft        []*core.Aircraft
	Ships           []*core.Ship
	Facilities      []*core.Facility
	Airbases        []*core.Airbase
	Weapons         []*core.Weapon // launched weapons in flight
	ReferencePoints []*core.ReferencePoint

	Relations *relations.Store
	Doctrines *doctrine.Store
	Missions  *mission.Manager

	rng      *rand.Rand
	resolver *engage.Resolver

	clock float64 // fractional simulation clock; CurrentTime is its rounding
	ticks int64   // ticks executed since load

	log      []core.LogEntry
	logSeq   uint
	removals *queue.Queue[string]
	removed  map[string]struct{} // pending removal membership

	depletionLogged map[string]bool
}

// Load builds a live scenario from a document. Sides get full doctrine
// records (document overrides on top of the default policy) and the
// relationship store is populated side by side.
func Load(doc Document, defaults core.Doctrine) (*Scenario, error) {
	if len(doc.Sides) == 0 {
		return nil, ErrNoSides
	}
	tickSeconds := doc.TickSeconds
	if tickSeconds <= 0 {
		tickSeconds = 1
	}

	s := &Scenario{
		ID:              doc.ID,
		Name:            doc.Name,
		CurrentTime:     doc.CurrentTime,
		TickSeconds:     tickSeconds,
		clock:           float64(doc.CurrentTime),
		Relations:       relations.NewStore(),
		Doctrines:       doctrine.NewStore(defaults),
		Missions:        mission.NewManager(),
		rng:             rand.New(rand.NewSource(doc.RandomSeed)),
		removals:        queue.New[string](),
		removed:         make(map[string]struct{}),
		depletionLogged: make(map[string]bool),
	}
	s.resolver = engage.NewResolver(s.rng, s.Relations, s.Doctrines)

	for i := range doc.Sides {
		side := doc.Sides[i]
		s.Sides = append(s.Sides, &side)
		s.Doctrines.Register(side.ID)
		if d, ok := doc.Doctrines[side.ID]; ok {
			s.Doctrines.Set(side.ID, d)
		}
		if rel, ok := doc.Relationships[side.ID]; ok {
			s.Relations.Update(side.ID, rel.Hostiles, rel.Allies)
		}
	}

	for i := range doc.Aircraft {
		a := doc.Aircraft[i]
		s.Aircraft = append(s.Aircraft, &a)
	}
	for i := range doc.Ships {
		sh := doc.Ships[i]
		s.Ships = append(s.Ships, &sh)
	}
	for i := range doc.Facilities {
		f := doc.Facilities[i]
		s.Facilities = append(s.Facilities, &f)
	}
	for i := range doc.Airbases {
		b := doc.Airbases[i]
		s.Airbases = append(s.Airbases, &b)
	}
	for i := range doc.Weapons {
		w := doc.Weapons[i]
		s.Weapons = append(s.Weapons, &w)
	}
	for i := range doc.ReferencePoints {
		rp := doc.ReferencePoints[i]
		s.ReferencePoints = append(s.ReferencePoints, &rp)
	}
	s.sortCollections()

	return s, nil
}

func (s *Scenario) sortCollections() {
	sort.Slice(s.Sides, func(i, j int) bool { return s.Sides[i].ID < s.Sides[j].ID })
	sort.Slice(s.Aircraft, func(i, j int) bool { return s.Aircraft[i].ID < s.Aircraft[j].ID })
	sort.Slice(s.Ships, func(i, j int) bool { return s.Ships[i].ID < s.Ships[j].ID })
	sort.Slice(s.Facilities, func(i, j int) bool { return s.Facilities[i].ID < s.Facilities[j].ID })
	sort.Slice(s.Airbases, func(i, j int) bool { return s.Airbases[i].ID < s.Airbases[j].ID })
	sort.Slice(s.Weapons, func(i, j int) bool { return s.Weapons[i].ID < s.Weapons[j].ID })
	sort.Slice(s.ReferencePoints, func(i, j int) bool { return s.ReferencePoints[i].ID < s.ReferencePoints[j].ID })
}

// Step runs one tick of the pipeline and returns the log entries produced
// during it. The pipeline order is fixed: deferred removals from the
// previous tick, advance, doctrine, engagement, missions.
func (s *Scenario) Step() []core.LogEntry {
	s.applyDeferredRemovals()

	start := len(s.log)
	s.ticks++
	// Accumulate fractional tick intervals in float and round once at the
	// boundary, so sub-second tickSeconds values keep advancing time.
	s.clock += s.TickSeconds
	s.CurrentTime = int64(math.Round(s.clock))
	now := s.CurrentTime

	s.advanceUnits(now)
	s.evaluateDoctrine(now)
	s.resolveEngagements(now)
	s.appendLog(s.Missions.Update(now, s)...)

	out := make([]core.LogEntry, len(s.log)-start)
	copy(out, s.log[start:])
	return out
}

// Log returns the full simulation log.
func (s *Scenario) Log() []core.LogEntry {
	return s.log
}

// DeleteUnit schedules a unit for removal at the next tick boundary.
// The unit stops participating immediately (existence checks fail) but
// stays in collections until the boundary so in-flight references remain
// valid for the rest of the current tick.
func (s *Scenario) DeleteUnit(id string) {
	if _, pending := s.removed[id]; pending {
		return
	}
	s.removed[id] = struct{}{}
	s.removals.Push(id)
}

// UnitExists reports whether a unit is live: present in a collection and
// not pending removal.
func (s *Scenario) UnitExists(id string) bool {
	if _, pending := s.removed[id]; pending {
		return false
	}
	return s.findUnit(id) != nil
}

// findUnit returns the base Unit for any live collection member.
func (s *Scenario) findUnit(id string) *core.Unit {
	for _, a := range s.Aircraft {
		if a.ID == id {
			return &a.Unit
		}
	}
	for _, sh := range s.Ships {
		if sh.ID == id {
			return &sh.Unit
		}
	}
	for _, f := range s.Facilities {
		if f.ID == id {
			return &f.Unit
		}
	}
	for _, b := range s.Airbases {
		if b.ID == id {
			return &b.Unit
		}
	}
	for _, w := range s.Weapons {
		if w.ID == id {
			return &w.Unit
		}
	}
	for _, rp := range s.ReferencePoints {
		if rp.ID == id {
			return &rp.Unit
		}
	}
	return nil
}

func (s *Scenario) sideByID(id string) *core.Side {
	for _, side := range s.Sides {
		if side.ID == id {
			return side
		}
	}
	return nil
}

func (s *Scenario) appendLog(entries ...core.LogEntry) {
	for _, e := range entries {
		s.logSeq++
		e.ID = s.logSeq
		s.log = append(s.log, e)
	}
}

func (s *Scenario) applyDeferredRemovals() {
	ids := s.removals.Drain()
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(s.removed, id)
	}

	aircraft := s.Aircraft[:0]
	for _, a := range s.Aircraft {
		if _, ok := drop[a.ID]; !ok {
			aircraft = append(aircraft, a)
		}
	}
	s.Aircraft = aircraft

	ships := s.Ships[:0]
	for _, sh := range s.Ships {
		if _, ok := drop[sh.ID]; !ok {
			ships = append(ships, sh)
		}
	}
	s.Ships = ships

	facilities := s.Facilities[:0]
	for _, f := range s.Facilities {
		if _, ok := drop[f.ID]; !ok {
			facilities = append(facilities, f)
		}
	}
	s.Facilities = facilities

	airbases := s.Airbases[:0]
	for _, b := range s.Airbases {
		if _, ok := drop[b.ID]; !ok {
			airbases = append(airbases, b)
		}
	}
	s.Airbases = airbases

	weapons := s.Weapons[:0]
	for _, w := range s.Weapons {
		if _, ok := drop[w.ID]; !ok {
			weapons = append(weapons, w)
		}
	}
	s.Weapons = weapons

	refs := s.ReferencePoints[:0]
	for _, rp := range s.ReferencePoints {
		if _, ok := drop[rp.ID]; !ok {
			refs = append(refs, rp)
		}
	}
	s.ReferencePoints = refs
}
