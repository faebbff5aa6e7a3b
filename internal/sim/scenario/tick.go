package scenario

import (
	"fmt"
	"sort"

	"github.com/opsim/engine/internal/geo"
	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/sim/engage"
	"github.com/opsim/engine/internal/sim/mission"
)

// homeArrivalKm is the distance within which an RTB aircraft recovers at
// its home base.
const homeArrivalKm = 2.0

// Stage 1: advance every mobile unit. Collections are iterated in kind
// order (aircraft, ships, weapons), each sorted by unit ID, so movement
// and fuel outcomes are reproducible.
func (s *Scenario) advanceUnits(now int64) {
	for _, a := range s.Aircraft {
		if !s.UnitExists(a.ID) {
			continue
		}
		s.advanceAircraft(now, a)
	}

	for _, sh := range s.Ships {
		if !s.UnitExists(sh.ID) {
			continue
		}
		res := sh.AdvanceAlongRoute(&sh.Unit, s.TickSeconds)
		if res.FuelExhausted {
			sh.SpeedKnots = 0
			s.appendLog(core.LogEntry{
				Timestamp: now,
				Type:      core.LogOther,
				SideID:    sh.SideID,
				Message:   fmt.Sprintf("%s is out of fuel and dead in the water", sh.Name),
			})
		}
	}

	for _, w := range s.Weapons {
		if !s.UnitExists(w.ID) {
			continue
		}
		s.advanceWeapon(now, w)
	}
}

func (s *Scenario) advanceAircraft(now int64, a *core.Aircraft) {
	// A chase overrides the planned route without consuming its waypoints.
	if a.ChaseTargetID != "" {
		target := s.findUnit(a.ChaseTargetID)
		if target != nil && s.UnitExists(a.ChaseTargetID) {
			lat, lon := geo.NextPosition(a.Latitude, a.Longitude, target.Latitude, target.Longitude, a.SpeedKnots, s.TickSeconds)
			a.Heading = geo.Bearing(a.Latitude, a.Longitude, target.Latitude, target.Longitude)
			a.Latitude = lat
			a.Longitude = lon
			s.burnFuel(now, a)
			return
		}
		a.ChaseTargetID = ""
	}

	res := a.AdvanceAlongRoute(&a.Unit, s.TickSeconds)
	if res.FuelExhausted {
		s.appendLog(core.LogEntry{
			Timestamp: now,
			Type:      core.LogAircraftCrashed,
			SideID:    a.SideID,
			Message:   fmt.Sprintf("%s ran out of fuel and crashed", a.Name),
		})
		s.DeleteUnit(a.ID)
		return
	}

	if a.RTB && res.RouteComplete {
		s.recoverAircraft(now, a)
	}
}

// burnFuel applies one tick of fuel consumption outside AdvanceAlongRoute
// (used for chase legs, which bypass the route).
func (s *Scenario) burnFuel(now int64, a *core.Aircraft) {
	if a.CurrentFuel <= 0 {
		return
	}
	a.CurrentFuel -= a.FuelRate * s.TickSeconds / 3600
	if a.CurrentFuel <= 0 {
		a.CurrentFuel = 0
		s.appendLog(core.LogEntry{
			Timestamp: now,
			Type:      core.LogAircraftCrashed,
			SideID:    a.SideID,
			Message:   fmt.Sprintf("%s ran out of fuel and crashed", a.Name),
		})
		s.DeleteUnit(a.ID)
	}
}

// recoverAircraft lands an RTB aircraft at its home base if it has
// arrived overhead.
func (s *Scenario) recoverAircraft(now int64, a *core.Aircraft) {
	for _, b := range s.Airbases {
		if b.ID != a.HomeBaseID {
			continue
		}
		if geo.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude) > homeArrivalKm {
			return
		}
		landed := *a
		landed.RTB = false
		landed.CurrentFuel = landed.MaxFuel
		b.Aircraft = append(b.Aircraft, &landed)
		s.appendLog(core.LogEntry{
			Timestamp: now,
			Type:      core.LogOther,
			SideID:    a.SideID,
			Message:   fmt.Sprintf("%s recovered at %s", a.Name, b.Name),
		})
		s.DeleteUnit(a.ID)
		return
	}
}

func (s *Scenario) advanceWeapon(now int64, w *core.Weapon) {
	target := s.findUnit(w.TargetID)
	if target == nil || !s.UnitExists(w.TargetID) {
		s.appendLog(core.LogEntry{
			Timestamp: now,
			Type:      core.LogWeaponCrashed,
			SideID:    w.SideID,
			Message:   fmt.Sprintf("%s lost its target and crashed", w.Name),
		})
		s.DeleteUnit(w.ID)
		return
	}

	// Pursuit guidance: re-aim at the target's current position each tick.
	w.Route = []core.Waypoint{{Latitude: target.Latitude, Longitude: target.Longitude}}
	res := w.AdvanceAlongRoute(&w.Unit, s.TickSeconds)

	if engage.AtTarget(w, target) {
		if s.resolver.RollHit(w) {
			s.appendLog(core.LogEntry{
				Timestamp: now,
				Type:      core.LogWeaponHit,
				SideID:    w.SideID,
				Message:   fmt.Sprintf("%s hit %s", w.Name, target.Name),
			}, core.LogEntry{
				Timestamp: now,
				Type:      core.LogTargetDestroyed,
				SideID:    target.SideID,
				Message:   fmt.Sprintf("%s was destroyed", target.Name),
			})
			if side := s.sideByID(w.SideID); side != nil {
				side.TotalScore += engage.PointsFor(s.kindOf(w.TargetID))
			}
			s.DeleteUnit(w.TargetID)
		} else {
			s.appendLog(core.LogEntry{
				Timestamp: now,
				Type:      core.LogWeaponMissed,
				SideID:    w.SideID,
				Message:   fmt.Sprintf("%s missed %s", w.Name, target.Name),
			})
		}
		s.DeleteUnit(w.ID)
		return
	}

	if res.FuelExhausted {
		s.appendLog(core.LogEntry{
			Timestamp: now,
			Type:      core.LogWeaponExpended,
			SideID:    w.SideID,
			Message:   fmt.Sprintf("%s expended without reaching %s", w.Name, target.Name),
		})
		s.DeleteUnit(w.ID)
	}
}

// Stage 2: doctrine-driven autonomous decisions.
func (s *Scenario) evaluateDoctrine(now int64) {
	for _, a := range s.Aircraft {
		if !s.UnitExists(a.ID) {
			continue
		}
		d := s.Doctrines.Get(a.SideID)
		s.evaluateRTB(now, a, d)
		if a.RTB {
			a.ChaseTargetID = ""
			continue
		}
		s.evaluateChase(a, d.AircraftChaseHostile)
		s.evaluatePatrolRouting(a)
		s.evaluateRefuelRouting(a)
	}
}

// evaluateRTB routes an aircraft home when doctrine requires it: either
// its strike mission completed, or remaining fuel only just covers the
// trip back. The RTB log entry is emitted once, when the flag flips.
func (s *Scenario) evaluateRTB(now int64, a *core.Aircraft, d core.Doctrine) {
	if a.RTB || a.HomeBaseID == "" {
		return
	}
	home := s.findUnit(a.HomeBaseID)
	if home == nil {
		return
	}

	reason := ""
	if d.AircraftRTBWhenStrikeComplete {
		if m := s.Missions.MissionFor(a.ID); m != nil && m.Kind == mission.KindStrike && m.State == mission.StateCompleted {
			reason = "mission complete"
		}
	}
	if reason == "" && d.AircraftRTBWhenOutOfRange && a.FuelRate > 0 && a.SpeedKnots > 0 {
		enduranceHours := a.CurrentFuel / a.FuelRate
		rangeKm := enduranceHours * geo.NmToKm(a.SpeedKnots)
		homeKm := geo.Distance(a.Latitude, a.Longitude, home.Latitude, home.Longitude)
		// 5% reserve on the trip home
		if rangeKm <= homeKm*1.05 {
			reason = "bingo fuel"
		}
	}
	if reason == "" {
		return
	}

	a.RTB = true
	a.Route = []core.Waypoint{{Latitude: home.Latitude, Longitude: home.Longitude}}
	s.appendLog(core.LogEntry{
		Timestamp: now,
		Type:      core.LogRTB,
		SideID:    a.SideID,
		Message:   fmt.Sprintf("%s returning to base: %s", a.Name, reason),
	})
}

// evaluateChase diverts an armed aircraft toward the nearest detected
// hostile; the chase ends when the contact is lost or destroyed.
func (s *Scenario) evaluateChase(a *core.Aircraft, allowed bool) {
	if !allowed || core.TotalWeaponQuantity(a.Weapons) == 0 {
		a.ChaseTargetID = ""
		return
	}
	candidates := s.platformCandidates()
	detectKm := geo.NmToKm(a.DetectionRangeNm)

	var best *engage.Candidate
	bestKm := 0.0
	for i := range candidates {
		c := &candidates[i]
		if c.Unit.ID == a.ID || !s.Relations.IsHostile(a.SideID, c.Unit.SideID) {
			continue
		}
		km := geo.Distance(a.Latitude, a.Longitude, c.Unit.Latitude, c.Unit.Longitude)
		if km > detectKm {
			continue
		}
		if best == nil || km < bestKm || (km == bestKm && c.Unit.ID < best.Unit.ID) {
			best = c
			bestKm = km
		}
	}
	if best == nil {
		a.ChaseTargetID = ""
		return
	}
	a.ChaseTargetID = best.Unit.ID
}

// evaluatePatrolRouting keeps patrol aircraft inside their assigned area:
// outside with an empty route they head for the area centroid, inside
// with an empty route they cycle to the next patrol vertex.
func (s *Scenario) evaluatePatrolRouting(a *core.Aircraft) {
	if len(a.Route) > 0 || a.ChaseTargetID != "" {
		return
	}
	m := s.Missions.MissionFor(a.ID)
	if m == nil || m.Kind != mission.KindPatrol || !m.Active() || m.Area == nil {
		return
	}
	if !m.Area.Contains(a.Latitude, a.Longitude) {
		lat, lon := m.Area.Centroid()
		a.Route = []core.Waypoint{{Latitude: lat, Longitude: lon}}
		return
	}
	// orbit the patrol vertices
	next := m.AreaPoints[int(s.ticks)%len(m.AreaPoints)]
	a.Route = []core.Waypoint{{Latitude: next.Latitude, Longitude: next.Longitude}}
}

// evaluateRefuelRouting keeps tanker aircraft shuttling along their
// refueling track. When the tanker finishes the track its route empties
// and the full track is issued again, so it flies back to the anchor
// point and repeats the pattern.
func (s *Scenario) evaluateRefuelRouting(a *core.Aircraft) {
	if len(a.Route) > 0 || a.ChaseTargetID != "" {
		return
	}
	m := s.Missions.MissionFor(a.ID)
	if m == nil || m.Kind != mission.KindAerialRefueling || !m.Active() || len(m.Track) == 0 {
		return
	}
	route := make([]core.Waypoint, len(m.Track))
	for i, p := range m.Track {
		route[i] = core.Waypoint{Latitude: p.Latitude, Longitude: p.Longitude}
	}
	a.Route = route
}

// Stage 3: engagement resolution. Firers are scanned aircraft first,
// then ships, then facilities, each in ID order. A firer with a weapon
// already in flight holds fire.
func (s *Scenario) resolveEngagements(now int64) {
	candidates := s.platformCandidates()

	for _, a := range s.Aircraft {
		if !s.UnitExists(a.ID) {
			continue
		}
		s.tryFire(now, engage.Firer{
			Unit:              &a.Unit,
			Kind:              core.KindAircraft,
			Weapons:           a.Weapons,
			EngagementRangeNm: a.EngagementRangeNm,
		}, candidates)
	}
	for _, sh := range s.Ships {
		if !s.UnitExists(sh.ID) {
			continue
		}
		s.tryFire(now, engage.Firer{
			Unit:              &sh.Unit,
			Kind:              core.KindShip,
			Weapons:           sh.Weapons,
			EngagementRangeNm: sh.EngagementRangeNm,
		}, candidates)
	}
	for _, f := range s.Facilities {
		if !s.UnitExists(f.ID) {
			continue
		}
		s.tryFire(now, engage.Firer{
			Unit:              &f.Unit,
			Kind:              core.KindFacility,
			Weapons:           f.Weapons,
			EngagementRangeNm: f.EngagementRangeNm,
		}, candidates)
	}
}

func (s *Scenario) tryFire(now int64, f engage.Firer, candidates []engage.Candidate) {
	if !s.resolver.MayAttack(f.Unit.SideID, f.Kind) {
		return
	}
	if s.hasWeaponInFlight(f.Unit.ID) {
		return
	}

	target := s.resolver.SelectTarget(f, candidates)
	if target == nil {
		return
	}
	if !s.UnitExists(target.Unit.ID) {
		return
	}

	if core.TotalWeaponQuantity(f.Weapons) == 0 {
		// Log depletion once per firer instead of every tick it holds
		// a target in range with empty racks.
		if !s.depletionLogged[f.Unit.ID] {
			s.depletionLogged[f.Unit.ID] = true
			_, entries := s.resolver.Fire(now, f, target.Unit)
			s.appendLog(entries...)
		}
		return
	}

	launched, entries := s.resolver.Fire(now, f, target.Unit)
	s.appendLog(entries...)
	if launched != nil {
		// Keep the in-flight collection in ID order so the next tick's
		// advance stage visits weapons by unit ID, not launch order.
		s.Weapons = append(s.Weapons, launched)
		sort.Slice(s.Weapons, func(i, j int) bool { return s.Weapons[i].ID < s.Weapons[j].ID })
	}
}

func (s *Scenario) hasWeaponInFlight(firerID string) bool {
	for _, w := range s.Weapons {
		if w.FirerID == firerID && s.UnitExists(w.ID) {
			return true
		}
	}
	return false
}

// platformCandidates lists every live platform as an engagement candidate,
// in kind order then ID order.
func (s *Scenario) platformCandidates() []engage.Candidate {
	out := make([]engage.Candidate, 0, len(s.Aircraft)+len(s.Ships)+len(s.Facilities)+len(s.Airbases))
	for _, a := range s.Aircraft {
		if s.UnitExists(a.ID) {
			out = append(out, engage.Candidate{Unit: &a.Unit, Kind: core.KindAircraft})
		}
	}
	for _, sh := range s.Ships {
		if s.UnitExists(sh.ID) {
			out = append(out, engage.Candidate{Unit: &sh.Unit, Kind: core.KindShip})
		}
	}
	for _, f := range s.Facilities {
		if s.UnitExists(f.ID) {
			out = append(out, engage.Candidate{Unit: &f.Unit, Kind: core.KindFacility})
		}
	}
	for _, b := range s.Airbases {
		if s.UnitExists(b.ID) {
			out = append(out, engage.Candidate{Unit: &b.Unit, Kind: core.KindAirbase})
		}
	}
	return out
}

func (s *Scenario) kindOf(id string) core.UnitKind {
	for _, a := range s.Aircraft {
		if a.ID == id {
			return core.KindAircraft
		}
	}
	for _, sh := range s.Ships {
		if sh.ID == id {
			return core.KindShip
		}
	}
	for _, f := range s.Facilities {
		if f.ID == id {
			return core.KindFacility
		}
	}
	for _, b := range s.Airbases {
		if b.ID == id {
			return core.KindAirbase
		}
	}
	return core.KindWeapon
}
