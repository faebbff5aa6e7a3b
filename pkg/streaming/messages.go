// Package streaming defines the wire protocol between the engine relay
// and connected frontends. All traffic is JSON envelopes over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/opsim/engine/internal/model/core"
)

// Client-to-server command types.
const (
	TypeLoadScenario   = "load_scenario"
	TypeStepScenario   = "step_scenario"
	TypeLaunchAircraft = "launch_aircraft"
	TypeDeleteUnit     = "delete_unit"
	TypeCreateMission  = "create_mission"
	TypeAssignUnit     = "assign_unit"
	TypeSetDoctrine    = "set_doctrine"
	TypeSetRelations   = "set_relations"
	TypeLoadRecording  = "load_recording"
	TypeSeekRecording  = "seek_recording"
)

// Server-to-client broadcast types.
const (
	TypeStepUpdate    = "step_update"
	TypeLogEntries    = "log_entries"
	TypeScenarioState = "scenario_state"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type  string `json:"type"` // always "ack"
	For   string `json:"for"`  // the message type being acknowledged
	Error string `json:"error,omitempty"`
}

// StepUpdatePayload carries one tick's snapshot to every client.
type StepUpdatePayload struct {
	Step core.Step `json:"step"`
}

// LogEntriesPayload carries the log entries a tick emitted.
type LogEntriesPayload struct {
	Entries []core.LogEntry `json:"entries"`
}

// LaunchAircraftPayload names an airframe to move from a base's
// inventory into the air.
type LaunchAircraftPayload struct {
	AirbaseID  string `json:"airbaseId"`
	AircraftID string `json:"aircraftId"`
}

// StepScenarioPayload requests a number of ticks; zero means one.
type StepScenarioPayload struct {
	Ticks int `json:"ticks"`
}

// DeleteUnitPayload names a unit to remove at the next tick boundary.
type DeleteUnitPayload struct {
	UnitID string `json:"unitId"`
}

// AssignUnitPayload moves a unit onto a mission.
type AssignUnitPayload struct {
	MissionID string `json:"missionId"`
	UnitID    string `json:"unitId"`
}

// LoadRecordingPayload names a stored recording to open for playback.
type LoadRecordingPayload struct {
	Name string `json:"name"`
}

// SeekRecordingPayload positions playback at a step index.
type SeekRecordingPayload struct {
	Index int `json:"index"`
}

// Point is a bare coordinate pair used in mission geometry.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateMissionPayload describes a patrol, strike, or aerial refueling
// mission. Points carry the patrol area or refueling track; TargetIDs
// carry strike targets.
type CreateMissionPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SideID    string   `json:"sideId"`
	Kind      string   `json:"kind"`
	Points    []Point  `json:"points,omitempty"`
	TargetIDs []string `json:"targetIds,omitempty"`
	Active    bool     `json:"active"`
}

// SetDoctrinePayload replaces one side's doctrine record.
type SetDoctrinePayload struct {
	SideID   string        `json:"sideId"`
	Doctrine core.Doctrine `json:"doctrine"`
}

// SetRelationsPayload replaces one side's relationship sets.
type SetRelationsPayload struct {
	SideID   string   `json:"sideId"`
	Hostiles []string `json:"hostiles"`
	Allies   []string `json:"allies"`
}
