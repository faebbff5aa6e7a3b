// Package doctrine stores per-side behavior flags. The store is pure
// lookup: the engagement resolver and mission manager consult it but
// never mutate it mid-tick.
package doctrine

import "github.com/opsim/engine/internal/model/core"

// Store holds a full doctrine record for every known side.
type Store struct {
	defaults core.Doctrine
	records  map[string]core.Doctrine
}

// NewStore creates a doctrine store using the given default record for
// newly registered sides.
func NewStore(defaults core.Doctrine) *Store {
	return &Store{
		defaults: defaults,
		records:  make(map[string]core.Doctrine),
	}
}

// Register writes the default doctrine record for a side. Every flag is
// populated; there are no partial records.
func (s *Store) Register(sideID string) {
	s.records[sideID] = s.defaults
}

// Set replaces a side's doctrine record.
func (s *Store) Set(sideID string, d core.Doctrine) {
	s.records[sideID] = d
}

// Get returns a side's doctrine record. Unknown sides get the default
// record rather than an error.
func (s *Store) Get(sideID string) core.Doctrine {
	if d, ok := s.records[sideID]; ok {
		return d
	}
	return s.defaults
}

// Delete removes a side's doctrine record.
func (s *Store) Delete(sideID string) {
	delete(s.records, sideID)
}
