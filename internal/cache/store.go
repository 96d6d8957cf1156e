// Package cache keeps rendered map artefacts in memory.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Key prefixes of cached artefacts.
const (
	PrefixPaths = "paths"
	PrefixSVG   = "svg"
)

// Store is a TTL cache with prefix invalidation and a maintenance switch.
// While in maintenance every read misses and every write is dropped.
//
// The generation advances on every maintenance transition. Values computed
// from data read under an older generation are rejected by SetIfGeneration.
type Store struct {
	items       *gocache.Cache
	maintenance atomic.Bool
	generation  atomic.Uint64

	// mu orders generation checked writes against maintenance transitions
	mu sync.Mutex
}

// New creates a store. Zero durations fall back to 24h expiry and 48h cleanup.
func New(ttl, cleanup time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cleanup <= 0 {
		cleanup = 2 * ttl
	}

	return &Store{items: gocache.New(ttl, cleanup)}
}

// Key joins prefix and params with ':'.
func Key(prefix string, params ...any) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for _, param := range params {
		sb.WriteByte(':')
		sb.WriteString(fmt.Sprint(param))
	}

	return sb.String()
}

// Get returns the cached value for key.
func (s *Store) Get(key string) (any, bool) {
	if s.maintenance.Load() {
		return nil, false
	}

	return s.items.Get(key)
}

// Set stores value under key with the default expiry.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maintenance.Load() {
		return
	}

	s.items.SetDefault(key, value)
}

// Generation returns the current cache generation.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// SetIfGeneration stores value only if no maintenance started since gen was
// read. It reports whether the value was stored.
func (s *Store) SetIfGeneration(key string, value any, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maintenance.Load() || s.generation.Load() != gen {
		log.Trace().Str("key", key).Uint64("generation", gen).Msg("Dropping stale cache write")
		return false
	}

	s.items.SetDefault(key, value)
	return true
}

// DeletePattern removes all keys starting with prefix and returns how many
// were removed. An empty prefix removes everything.
func (s *Store) DeletePattern(prefix string) int {
	removed := 0
	for key := range s.items.Items() {
		if strings.HasPrefix(key, prefix) {
			s.items.Delete(key)
			removed++
		}
	}

	log.Debug().Str("pattern", prefix).Int("removed", removed).Msg("Cache keys invalidated")
	return removed
}

// Flush removes every item.
func (s *Store) Flush() {
	s.items.Flush()
}

// Len returns the number of stored items, including expired ones not yet
// cleaned up.
func (s *Store) Len() int {
	return s.items.ItemCount()
}

// BeginMaintenance flushes the store and switches reads and writes off.
func (s *Store) BeginMaintenance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation.Add(1)
	s.maintenance.Store(true)
	s.items.Flush()
	log.Info().Msg("Cache maintenance started")
}

// EndMaintenance flushes anything left and resumes normal operation so
// requests repopulate the store.
func (s *Store) EndMaintenance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation.Add(1)
	s.items.Flush()
	s.maintenance.Store(false)
	log.Info().Msg("Cache maintenance finished")
}

// InMaintenance reports whether maintenance mode is on.
func (s *Store) InMaintenance() bool {
	return s.maintenance.Load()
}
