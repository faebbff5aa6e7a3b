// internal/model/core/unit.go
package core

import (
	"sort"

	"github.com/opsim/engine/internal/geo"
)

// UnitKind identifies the concrete variant of a unit.
type UnitKind string

const (
	KindAircraft       UnitKind = "aircraft"
	KindShip           UnitKind = "ship"
	KindFacility       UnitKind = "facility"
	KindAirbase        UnitKind = "airbase"
	KindWeapon         UnitKind = "weapon"
	KindReferencePoint UnitKind = "referencePoint"
)

// Waypoint is a single route leg destination.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Unit holds the attributes shared by every entity on the map.
type Unit struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	SideID    string  `json:"sideId"`
	ClassName string  `json:"className"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"` // feet ASL
	SideColor string  `json:"sideColor"`

	// Web Mercator projection of the position, populated on snapshot
	// copies so map clients render without reprojecting.
	MercatorX float64 `json:"mercatorX,omitempty"`
	MercatorY float64 `json:"mercatorY,omitempty"`
}

// Kinematics holds movement and endurance state for mobile units.
type Kinematics struct {
	Heading           float64    `json:"heading"`
	SpeedKnots        float64    `json:"speed"`
	CurrentFuel       float64    `json:"currentFuel"`
	MaxFuel           float64    `json:"maxFuel"`
	FuelRate          float64    `json:"fuelRate"` // fuel units per hour
	DetectionRangeNm  float64    `json:"range"`
	EngagementRangeNm float64    `json:"engagementRange"`
	Route             []Waypoint `json:"route"`
	Selected          bool       `json:"selected"` // UI hint, not simulation-relevant
}

// MoveResult reports what happened during one tick of route advancement.
type MoveResult struct {
	Moved          bool
	WaypointPopped bool
	RouteComplete  bool
	FuelExhausted  bool
}

// waypointArrivalKm is the distance within which a waypoint counts as reached.
const waypointArrivalKm = 0.5

// AdvanceAlongRoute moves the unit one tick toward its first waypoint and
// burns fuel. The waypoint is consumed once the unit is within the arrival
// tolerance; waypoints are never revisited. Fuel is clamped at zero and
// exhaustion is reported exactly once, on the tick it occurs.
func (k *Kinematics) AdvanceAlongRoute(u *Unit, tickSeconds float64) MoveResult {
	var res MoveResult
	if len(k.Route) == 0 {
		res.RouteComplete = true
		return res
	}

	wp := k.Route[0]
	lat, lon := geo.NextPosition(u.Latitude, u.Longitude, wp.Latitude, wp.Longitude, k.SpeedKnots, tickSeconds)
	k.Heading = geo.Bearing(u.Latitude, u.Longitude, wp.Latitude, wp.Longitude)
	u.Latitude = lat
	u.Longitude = lon
	res.Moved = true

	if k.CurrentFuel > 0 {
		k.CurrentFuel -= k.FuelRate * tickSeconds / 3600
		if k.CurrentFuel <= 0 {
			k.CurrentFuel = 0
			res.FuelExhausted = true
		}
	}

	if geo.Distance(u.Latitude, u.Longitude, wp.Latitude, wp.Longitude) < waypointArrivalKm {
		k.Route = k.Route[1:]
		res.WaypointPopped = true
		if len(k.Route) == 0 {
			res.RouteComplete = true
		}
	}
	return res
}

// Aircraft is a fixed-wing or rotary unit able to carry weapons.
type Aircraft struct {
	Unit
	Kinematics
	HomeBaseID    string    `json:"homeBaseId"`
	Weapons       []*Weapon `json:"weapons"`
	RTB           bool      `json:"rtb"`
	ChaseTargetID string    `json:"chaseTargetId"`
}

// Ship is a surface combatant able to carry weapons and aircraft.
type Ship struct {
	Unit
	Kinematics
	Weapons  []*Weapon   `json:"weapons"`
	Aircraft []*Aircraft `json:"aircraft"`
}

// Facility is a stationary installation, typically a SAM site.
type Facility struct {
	Unit
	DetectionRangeNm  float64   `json:"range"`
	EngagementRangeNm float64   `json:"engagementRange"`
	Weapons           []*Weapon `json:"weapons"`
}

// Airbase is a stationary installation hosting aircraft.
type Airbase struct {
	Unit
	Aircraft []*Aircraft `json:"aircraft"`
}

// ReferencePoint is a named map location used by missions.
type ReferencePoint struct {
	Unit
}

// Weapon is both an inventory record on a platform and, once launched, an
// independent unit flying at its target. CurrentQuantity counts rounds still
// held by the owning platform; a launched weapon in the scenario's weapon
// collection always has quantity semantics of a single round.
type Weapon struct {
	Unit
	Kinematics
	CurrentQuantity int     `json:"currentQuantity"`
	MaxQuantity     int     `json:"maxQuantity"`
	Lethality       float64 `json:"lethality"` // hit probability in [0,1]
	TargetID        string  `json:"targetId"`
	FirerID         string  `json:"firerId"`
}

// TotalWeaponQuantity sums remaining rounds across a weapon inventory.
func TotalWeaponQuantity(weapons []*Weapon) int {
	total := 0
	for _, w := range weapons {
		total += w.CurrentQuantity
	}
	return total
}

// SortWeapons orders an inventory by unit ID so per-tick scans are stable.
func SortWeapons(weapons []*Weapon) {
	sort.Slice(weapons, func(i, j int) bool {
		return weapons[i].ID < weapons[j].ID
	})
}
