// internal/model/core/recording.go
package core

// RecordingInfo is recording metadata, carried separately from the steps.
type RecordingInfo struct {
	Name         string `json:"name"`
	ScenarioID   string `json:"scenarioId"`
	ScenarioName string `json:"scenarioName"`
	StartTime    int64  `json:"startTime"`
}

// Step is a full snapshot of scenario state at one tick.
type Step struct {
	CurrentTime     int64            `json:"currentTime"`
	Aircraft        []Aircraft       `json:"aircraft"`
	Ships           []Ship           `json:"ships"`
	Facilities      []Facility       `json:"facilities"`
	Airbases        []Airbase        `json:"airbases"`
	Weapons         []Weapon         `json:"weapons"`
	ReferencePoints []ReferencePoint `json:"referencePoints"`
}

// Recording is an ordered sequence of steps plus metadata.
type Recording struct {
	Info  RecordingInfo `json:"info"`
	Steps []Step        `json:"steps"`
}
