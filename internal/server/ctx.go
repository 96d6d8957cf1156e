package server

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mahamap/internal/cache"
	"github.com/woozymasta/mahamap/internal/config"
	"github.com/woozymasta/mahamap/internal/processor"
	"github.com/woozymasta/mahamap/internal/render"
	"github.com/woozymasta/mahamap/internal/worker"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config          *config.Config
	Pool            *worker.Pool
	Cache           *cache.Store
	TransparentTile []byte

	// reloadMu serializes maintenance cycles
	reloadMu sync.Mutex

	mu              sync.RWMutex
	maps            []config.Map
	mapNameResolver map[string]string
	boundaries      map[string]*processor.Boundaries
}

// NewServerContext initializes the context and loads the stored boundaries
// of every configured map. Maps without boundaries are left out.
func NewServerContext(cfg *config.Config, pool *worker.Pool, store *cache.Store) *ServerContext {
	log.Info().Int("config_maps_count", len(cfg.Maps)).Msg("Initializing server context")

	tile, err := render.TransparentTile(config.DefaultTileSize)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode transparent tile")
	}

	s := &ServerContext{
		Config:          cfg,
		Pool:            pool,
		Cache:           store,
		TransparentTile: tile,
	}
	s.Reload()

	return s
}

// Reload re-reads boundaries from disk and swaps them in atomically.
func (s *ServerContext) Reload() int {
	resolver := make(map[string]string)
	boundaries := make(map[string]*processor.Boundaries)
	validMaps := make([]config.Map, 0, len(s.Config.Maps))

	for _, m := range s.Config.Maps {
		b, err := processor.LoadBoundaries(s.Config, m)
		if err != nil {
			log.Warn().
				Err(err).
				Str("map", m.Name).
				Msg("Skipping map: boundaries not available")
			continue
		}

		mapDir := s.Config.Dir(m)
		if _, err := os.Stat(filepath.Join(mapDir, config.TilesDir)); os.IsNotExist(err) {
			m.NoTiles = true
			log.Trace().Str("map", m.Name).Msg("Tiles layer skipped: directory not found")
		}
		if _, err := os.Stat(filepath.Join(mapDir, config.PreviewFile)); os.IsNotExist(err) {
			m.NoPreview = true
			log.Trace().Str("map", m.Name).Msg("Preview skipped: file not found")
		}

		// Setup Resolver
		resolver[m.Name] = m.Name
		for _, alias := range m.Aliases {
			resolver[alias] = m.Name
		}
		boundaries[m.Name] = b

		log.Debug().
			Str("map", m.Name).
			Int("features", len(b.Features)).
			Float64("scale", b.Params.Scale).
			Bool("tiles", !m.NoTiles).
			Msg("Map validated and added to context")

		validMaps = append(validMaps, m)
	}

	sort.Slice(validMaps, func(i, j int) bool {
		idxI, idxJ := 999999, 999999
		if validMaps[i].Index != nil {
			idxI = *validMaps[i].Index
		}
		if validMaps[j].Index != nil {
			idxJ = *validMaps[j].Index
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return validMaps[i].Name < validMaps[j].Name
	})

	s.mu.Lock()
	s.maps = validMaps
	s.mapNameResolver = resolver
	s.boundaries = boundaries
	s.mu.Unlock()

	log.Info().
		Int("valid_maps_count", len(validMaps)).
		Msg("Server context initialized successfully")

	return len(validMaps)
}

// Maps returns the currently served maps.
func (s *ServerContext) Maps() []config.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maps
}

// lookup resolves a map name or alias.
func (s *ServerContext) lookup(name string) (config.Map, *processor.Boundaries, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	realName, ok := s.mapNameResolver[name]
	if !ok {
		return config.Map{}, nil, false
	}
	for _, m := range s.maps {
		if m.Name == realName {
			return m, s.boundaries[realName], true
		}
	}

	return config.Map{}, nil, false
}
