// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/mahamap/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Normalize.
const (
	DefaultDataDir     = "maps"
	DefaultZoomLimit   = 4
	DefaultTileSize    = 256
	DefaultPreviewSize = 320
	DefaultWorkers     = 4
)

// Boundary artefact file names inside a map directory.
const (
	BoundariesFile = "boundaries.geojson"
	PreviewFile    = "preview.webp"
	TilesDir       = "tiles"
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string      `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	DataDir     string      `yaml:"data_dir,omitempty" json:"-"`
	AdminToken  string      `yaml:"admin_token,omitempty" json:"-"`
	Maps        []Map       `yaml:"maps" json:"maps"`
	Cache       CacheConfig `yaml:"cache,omitempty" json:"-"`
	ZoomLimit   int         `yaml:"zoom,omitempty" json:"-"`
	Workers     int         `yaml:"workers,omitempty" json:"-"`
}

// CacheConfig sets in-memory cache lifetimes.
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl,omitempty"`
	Cleanup time.Duration `yaml:"cleanup,omitempty"`
}

// Map represents a single boundary map (a state or a district set).
type Map struct {
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	// optional fixed projection, fitted to the boundaries when absent
	Projection *geo.Params `yaml:"projection,omitempty" json:"projection,omitempty"`

	geo.NameKeys `yaml:",inline" json:"-"`

	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Source      string   `yaml:"source" json:"-"` // http(s) URL or local GeoJSON file
	Attribution string   `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	ZoomLimit   int      `yaml:"zoom,omitempty" json:"zoom"`
	TileSize    int      `yaml:"tile_size,omitempty" json:"tile_size"`
	PreviewSize int      `yaml:"preview_size,omitempty" json:"-"`
	Padding     float64  `yaml:"padding,omitempty" json:"-"`
	NoTiles     bool     `yaml:"-" json:"no_tiles,omitempty"`
	NoPreview   bool     `yaml:"-" json:"no_preview,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize validates map entries and fills defaults from the root level.
func (c *Config) Normalize() error {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.ZoomLimit <= 0 {
		c.ZoomLimit = DefaultZoomLimit
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}

	seen := make(map[string]bool, len(c.Maps))
	for i := range c.Maps {
		m := &c.Maps[i]
		if m.Name == "" {
			return fmt.Errorf("map #%d: name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("map %q: duplicate name", m.Name)
		}
		seen[m.Name] = true

		if m.ZoomLimit <= 0 {
			m.ZoomLimit = c.ZoomLimit
		}
		if m.TileSize <= 0 {
			m.TileSize = DefaultTileSize
		}
		if m.PreviewSize <= 0 {
			m.PreviewSize = DefaultPreviewSize
		}
		if m.Padding <= 0 {
			m.Padding = 20
		}
		if m.Attribution == "" {
			m.Attribution = c.Attribution
		}
		if m.Title == "" {
			m.Title = m.Name
		}
		m.NameKeys = m.NameKeys.WithDefaults()
	}

	return nil
}

// Dir returns the artefact directory of a map.
func (c *Config) Dir(m Map) string {
	return filepath.Join(c.DataDir, m.Name)
}

// ErrNoProjection is returned when neither a fixed projection nor boundaries
// to fit one are available.
var ErrNoProjection = errors.New("no projection available")

// ProjectionFor returns the fixed projection of the map, or one fitted to
// bound on the default canvas.
func (m Map) ProjectionFor(bound *geo.Bound) (geo.Params, error) {
	if m.Projection != nil && m.Projection.Scale != 0 {
		return *m.Projection, nil
	}
	if bound == nil {
		return geo.Params{}, ErrNoProjection
	}

	return geo.Fit(*bound, geo.CanvasX*2, geo.CanvasY*2, m.Padding), nil
}
