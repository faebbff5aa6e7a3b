// Package mission manages patrol, strike and aerial-refueling mission
// lifecycles and their unit assignments.
package mission

import (
	"errors"
	"fmt"

	"github.com/opsim/engine/internal/geo"
	"github.com/opsim/engine/internal/model/core"
)

// Validation errors returned at mission creation.
var (
	ErrTooFewReferencePoints = errors.New("patrol mission requires at least 3 reference points")
	ErrNoTargets             = errors.New("strike mission requires at least 1 target")
	ErrEmptyTrack            = errors.New("refueling mission requires a track")
	ErrUnknownMission        = errors.New("unknown mission")
	ErrDuplicateMission      = errors.New("mission id already in use")
)

// Kind identifies the mission variant.
type Kind string

const (
	KindPatrol          Kind = "patrol"
	KindStrike          Kind = "strike"
	KindAerialRefueling Kind = "aerialRefueling"
)

// State is the mission lifecycle state.
type State string

const (
	StateCreated   State = "created" // inactive
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Mission is a tagged variant over patrol, strike and refueling missions.
// Only the fields for its Kind are populated.
type Mission struct {
	ID     string
	Name   string
	SideID string
	Kind   Kind
	State  State
	Units  []string // assigned unit IDs, insertion-ordered, unique

	// Patrol
	AreaPoints []core.ReferencePoint
	Area       *geo.Area

	// Strike
	TargetIDs []string

	// AerialRefueling
	Track []core.ReferencePoint
}

// Active reports whether the mission is currently running.
func (m *Mission) Active() bool {
	return m.State == StateActive
}

// Terminal reports whether the mission has reached a terminal state.
func (m *Mission) Terminal() bool {
	return m.State == StateCompleted || m.State == StateAborted
}

// WorldView is the read-only world access the manager needs during its
// per-tick update.
type WorldView interface {
	UnitExists(id string) bool
}

// Manager owns all missions in a scenario. Missions are kept in creation
// order so per-tick updates are deterministic.
type Manager struct {
	missions []*Mission
	byID     map[string]*Mission
}

// NewManager creates an empty mission manager.
func NewManager() *Manager {
	return &Manager{byID: make(map[string]*Mission)}
}

// CreatePatrol registers a patrol mission. At least three reference points
// are required to form the patrol polygon; fewer is a configuration error.
func (mg *Manager) CreatePatrol(id, name, sideID string, points []core.ReferencePoint, active bool) (*Mission, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewReferencePoints, len(points))
	}
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Latitude
		lons[i] = p.Longitude
	}
	area, err := geo.NewArea(lats, lons)
	if err != nil {
		return nil, err
	}

	m := &Mission{
		ID:         id,
		Name:       name,
		SideID:     sideID,
		Kind:       KindPatrol,
		State:      StateCreated,
		AreaPoints: points,
		Area:       area,
	}
	if active {
		m.State = StateActive
	}
	return m, mg.add(m)
}

// CreateStrike registers a strike mission against one or more targets.
func (mg *Manager) CreateStrike(id, name, sideID string, targetIDs []string, active bool) (*Mission, error) {
	if len(targetIDs) == 0 {
		return nil, ErrNoTargets
	}
	m := &Mission{
		ID:        id,
		Name:      name,
		SideID:    sideID,
		Kind:      KindStrike,
		State:     StateCreated,
		TargetIDs: append([]string(nil), targetIDs...),
	}
	if active {
		m.State = StateActive
	}
	return m, mg.add(m)
}

// CreateAerialRefueling registers a refueling mission along a track.
func (mg *Manager) CreateAerialRefueling(id, name, sideID string, track []core.ReferencePoint, active bool) (*Mission, error) {
	if len(track) == 0 {
		return nil, ErrEmptyTrack
	}
	m := &Mission{
		ID:     id,
		Name:   name,
		SideID: sideID,
		Kind:   KindAerialRefueling,
		State:  StateCreated,
		Track:  append([]core.ReferencePoint(nil), track...),
	}
	if active {
		m.State = StateActive
	}
	return m, mg.add(m)
}

func (mg *Manager) add(m *Mission) error {
	if _, exists := mg.byID[m.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMission, m.ID)
	}
	mg.missions = append(mg.missions, m)
	mg.byID[m.ID] = m
	return nil
}

// Get returns a mission by ID.
func (mg *Manager) Get(id string) (*Mission, error) {
	m, ok := mg.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMission, id)
	}
	return m, nil
}

// Missions returns all missions in creation order.
func (mg *Manager) Missions() []*Mission {
	return mg.missions
}

// MissionFor returns the mission a unit is assigned to, or nil.
func (mg *Manager) MissionFor(unitID string) *Mission {
	for _, m := range mg.missions {
		for _, id := range m.Units {
			if id == unitID {
				return m
			}
		}
	}
	return nil
}

// AssignUnit places a unit on a mission. A unit already assigned to a
// different mission is transferred: removed from its previous mission,
// added to the new one. Assigning a unit twice to the same mission is a
// no-op.
func (mg *Manager) AssignUnit(missionID, unitID string) error {
	m, err := mg.Get(missionID)
	if err != nil {
		return err
	}
	if prev := mg.MissionFor(unitID); prev != nil {
		if prev.ID == missionID {
			return nil
		}
		prev.Units = removeString(prev.Units, unitID)
	}
	m.Units = append(m.Units, unitID)
	return nil
}

// UnassignUnit removes a unit from a mission. The mission is retained in
// its current state even if no units remain assigned.
func (mg *Manager) UnassignUnit(missionID, unitID string) error {
	m, err := mg.Get(missionID)
	if err != nil {
		return err
	}
	m.Units = removeString(m.Units, unitID)
	return nil
}

// Activate transitions a mission to Active. Terminal missions stay put.
func (mg *Manager) Activate(missionID string) error {
	m, err := mg.Get(missionID)
	if err != nil {
		return err
	}
	if !m.Terminal() {
		m.State = StateActive
	}
	return nil
}

// Deactivate returns an active mission to Created.
func (mg *Manager) Deactivate(missionID string) error {
	m, err := mg.Get(missionID)
	if err != nil {
		return err
	}
	if m.State == StateActive {
		m.State = StateCreated
	}
	return nil
}

// Delete removes a mission entirely.
func (mg *Manager) Delete(missionID string) error {
	if _, err := mg.Get(missionID); err != nil {
		return err
	}
	delete(mg.byID, missionID)
	for i, m := range mg.missions {
		if m.ID == missionID {
			mg.missions = append(mg.missions[:i], mg.missions[i+1:]...)
			break
		}
	}
	return nil
}

// Update advances mission state machines against the post-engagement world
// and returns the log entries produced this tick. Assigned units that no
// longer exist are pruned first so no mission references a deleted unit
// past the tick boundary.
//
// Strike missions complete when every target is gone (one STRIKE_MISSION_SUCCESS
// entry), and abort when all assigned units are lost while targets remain
// (one STRIKE_MISSION_ABORTED entry). Patrol and refueling missions have no
// automatic terminal state.
func (mg *Manager) Update(now int64, world WorldView) []core.LogEntry {
	var entries []core.LogEntry

	for _, m := range mg.missions {
		pruned := m.Units[:0]
		for _, id := range m.Units {
			if world.UnitExists(id) {
				pruned = append(pruned, id)
			}
		}
		hadUnits := len(m.Units) > 0
		m.Units = pruned

		if m.Kind != KindStrike || !m.Active() {
			continue
		}

		remaining := 0
		for _, id := range m.TargetIDs {
			if world.UnitExists(id) {
				remaining++
			}
		}

		switch {
		case remaining == 0:
			m.State = StateCompleted
			entries = append(entries, core.LogEntry{
				Timestamp: now,
				Type:      core.LogStrikeSuccess,
				SideID:    m.SideID,
				Message:   fmt.Sprintf("Strike mission %s complete: all targets destroyed", m.Name),
			})
		case hadUnits && len(m.Units) == 0:
			m.State = StateAborted
			entries = append(entries, core.LogEntry{
				Timestamp: now,
				Type:      core.LogStrikeAborted,
				SideID:    m.SideID,
				Message:   fmt.Sprintf("Strike mission %s aborted: no assigned units remain", m.Name),
			})
		}
	}
	return entries
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
