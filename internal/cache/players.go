// Package cache provides small in-memory caches for state that is
// expensive to rebuild between commands.
package cache

import (
	"sync"

	"github.com/opsim/engine/internal/recorder"
)

// PlayerCache maps recording names to loaded playback players so a
// frontend can switch between recordings without reparsing them.
type PlayerCache struct {
	mu      sync.RWMutex
	players map[string]*recorder.Player
}

// NewPlayerCache creates a new PlayerCache.
func NewPlayerCache() *PlayerCache {
	return &PlayerCache{
		players: make(map[string]*recorder.Player),
	}
}

// Get retrieves a player by recording name.
func (c *PlayerCache) Get(name string) (*recorder.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.players[name]
	return p, ok
}

// Set stores a player by recording name.
func (c *PlayerCache) Set(name string, p *recorder.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.players[name] = p
}

// Delete removes a player by recording name.
func (c *PlayerCache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.players, name)
}

// Reset clears the cache.
func (c *PlayerCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.players = make(map[string]*recorder.Player)
}

// Len reports the number of cached players.
func (c *PlayerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.players)
}
