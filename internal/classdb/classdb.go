// Package classdb provides the read-only unit class reference table.
// Class records carry the per-class performance numbers the engine
// consumes when instantiating units; the table is loaded once at startup
// and never mutated by the simulation.
package classdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnknownClass is returned when a class name has no record.
var ErrUnknownClass = errors.New("unknown unit class")

// Class is one reference record keyed by class name.
type Class struct {
	ClassName         string  `json:"className"`
	Kind              string  `json:"kind"`
	SpeedKnots        float64 `json:"speed"`
	MaxFuel           float64 `json:"maxFuel"`
	FuelRate          float64 `json:"fuelRate"`
	DetectionRangeNm  float64 `json:"range"`
	EngagementRangeNm float64 `json:"engagementRange"`
	Lethality         float64 `json:"lethality"`
	MaxQuantity       int     `json:"maxQuantity"`
}

// DB is the immutable class table.
type DB struct {
	classes map[string]Class
}

// New builds a class table from records. Later duplicates win.
func New(classes []Class) *DB {
	m := make(map[string]Class, len(classes))
	for _, c := range classes {
		m[c.ClassName] = c
	}
	return &DB{classes: m}
}

// LoadFile reads a JSON array of class records from disk.
func LoadFile(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading class db: %w", err)
	}
	var classes []Class
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("parsing class db: %w", err)
	}
	return New(classes), nil
}

// Get looks up a class record by name.
func (db *DB) Get(className string) (Class, error) {
	c, ok := db.classes[className]
	if !ok {
		return Class{}, fmt.Errorf("%w: %s", ErrUnknownClass, className)
	}
	return c, nil
}

// Len returns the number of records in the table.
func (db *DB) Len() int {
	return len(db.classes)
}
