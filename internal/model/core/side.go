// internal/model/core/side.go
package core

// Side is a faction owning units, with its own doctrine and relationships.
type Side struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	TotalScore int    `json:"totalScore"`
}

// Doctrine is the full set of per-side behavior flags. A side's record
// always carries every flag; there are no partial doctrines.
type Doctrine struct {
	AircraftAttackHostile         bool `json:"aircraftAttackHostile"`
	AircraftChaseHostile          bool `json:"aircraftChaseHostile"`
	AircraftRTBWhenOutOfRange     bool `json:"aircraftRtbWhenOutOfRange"`
	AircraftRTBWhenStrikeComplete bool `json:"aircraftRtbWhenStrikeComplete"`
	SAMAttackHostile              bool `json:"samAttackHostile"`
	ShipAttackHostile             bool `json:"shipAttackHostile"`
}

// DefaultDoctrine is the conservative baseline applied at side creation:
// attack and RTB behaviors all enabled.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		AircraftAttackHostile:         true,
		AircraftChaseHostile:          true,
		AircraftRTBWhenOutOfRange:     true,
		AircraftRTBWhenStrikeComplete: true,
		SAMAttackHostile:              true,
		ShipAttackHostile:             true,
	}
}
