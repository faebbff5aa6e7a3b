// Package relations stores the hostile/ally adjacency between sides.
// A pair of sides can never be hostile and allied at the same time: adding
// one kind of relation removes the other. Unknown side IDs resolve to
// neutral rather than erroring.
package relations

import "sort"

// Store holds per-side hostile and ally sets, keyed by side ID.
type Store struct {
	hostiles map[string]map[string]struct{}
	allies   map[string]map[string]struct{}
}

// NewStore creates an empty relationship store.
func NewStore() *Store {
	return &Store{
		hostiles: make(map[string]map[string]struct{}),
		allies:   make(map[string]map[string]struct{}),
	}
}

// AddHostile marks other as hostile to side, removing any ally relation
// between the pair.
func (s *Store) AddHostile(sideID, otherID string) {
	if sideID == otherID {
		return
	}
	delete(s.allies[sideID], otherID)
	if s.hostiles[sideID] == nil {
		s.hostiles[sideID] = make(map[string]struct{})
	}
	s.hostiles[sideID][otherID] = struct{}{}
}

// AddAlly marks other as an ally of side, removing any hostile relation
// between the pair.
func (s *Store) AddAlly(sideID, otherID string) {
	if sideID == otherID {
		return
	}
	delete(s.hostiles[sideID], otherID)
	if s.allies[sideID] == nil {
		s.allies[sideID] = make(map[string]struct{})
	}
	s.allies[sideID][otherID] = struct{}{}
}

// RemoveHostile removes a hostile relation. Unknown pairs are a no-op.
func (s *Store) RemoveHostile(sideID, otherID string) {
	delete(s.hostiles[sideID], otherID)
}

// RemoveAlly removes an ally relation. Unknown pairs are a no-op.
func (s *Store) RemoveAlly(sideID, otherID string) {
	delete(s.allies[sideID], otherID)
}

// IsHostile reports whether other is hostile to side. Unknown side IDs
// are neutral.
func (s *Store) IsHostile(sideID, otherID string) bool {
	_, ok := s.hostiles[sideID][otherID]
	return ok
}

// IsAlly reports whether other is an ally of side. Unknown side IDs are
// neutral.
func (s *Store) IsAlly(sideID, otherID string) bool {
	_, ok := s.allies[sideID][otherID]
	return ok
}

// Hostiles returns the sorted hostile side IDs for a side.
func (s *Store) Hostiles(sideID string) []string {
	return sortedKeys(s.hostiles[sideID])
}

// Allies returns the sorted ally side IDs for a side.
func (s *Store) Allies(sideID string) []string {
	return sortedKeys(s.allies[sideID])
}

// Update replaces both relation sets for a side in one call. The mutual
// exclusion invariant is re-applied: a side listed in both slices ends up
// hostile only if it appears last in the hostile list processing order,
// so allies are applied first and hostiles second.
func (s *Store) Update(sideID string, hostiles, allies []string) {
	s.hostiles[sideID] = nil
	s.allies[sideID] = nil
	for _, id := range allies {
		s.AddAlly(sideID, id)
	}
	for _, id := range hostiles {
		s.AddHostile(sideID, id)
	}
}

// DeleteSide purges a side from every other side's relation sets and
// drops its own.
func (s *Store) DeleteSide(sideID string) {
	delete(s.hostiles, sideID)
	delete(s.allies, sideID)
	for id := range s.hostiles {
		delete(s.hostiles[id], sideID)
	}
	for id := range s.allies {
		delete(s.allies[id], sideID)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
