// Package processor handles fetching boundary data and producing map artefacts.
package processor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/mahamap/internal/config"
	"github.com/woozymasta/mahamap/internal/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// ErrNoPolygons is returned when a source holds no polygonal features.
var ErrNoPolygons = errors.New("no polygon features in source")

// Boundaries is a loaded boundary set with its projection.
type Boundaries struct {
	Features []geo.Feature
	Bound    geo.Bound
	Params   geo.Params
}

// ProcessBoundaries fetches the map source, keeps polygonal features and
// stores them as GeoJSON in the map directory.
func ProcessBoundaries(client *http.Client, cfg *config.Config, m config.Map, force bool) error {
	destDir := cfg.Dir(m)
	destFile := filepath.Join(destDir, config.BoundariesFile)

	// Check if file exists
	if _, err := os.Stat(destFile); err == nil {
		if !force {
			log.Debug().Str("map", m.Name).Msg("Boundaries file exists, skipping")
			return nil
		}
	}

	if m.Source == "" {
		return fmt.Errorf("map %q: source is not set", m.Name)
	}

	log.Info().
		Str("map", m.Name).
		Str("source", m.Source).
		Msg("Processing boundaries")

	data, err := readSource(client, m.Source)
	if err != nil {
		return err
	}

	fc, err := geo.ParseFeatureCollection(data)
	if err != nil {
		return err
	}

	kept := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if f.Geometry == nil || !geo.IsPolygonal(f.Geometry) {
			log.Trace().
				Str("map", m.Name).
				Interface("properties", f.Properties).
				Msg("Skipping non polygonal feature")
			continue
		}
		kept.Append(f)
	}
	if len(kept.Features) == 0 {
		return fmt.Errorf("map %q: %w", m.Name, ErrNoPolygons)
	}

	log.Info().
		Str("map", m.Name).
		Int("features", len(kept.Features)).
		Int("skipped", len(fc.Features)-len(kept.Features)).
		Msg("Boundaries decoded")

	return saveGeoJSON(destDir, destFile, kept)
}

// LoadBoundaries reads stored boundaries of a map and resolves its projection.
func LoadBoundaries(cfg *config.Config, m config.Map) (*Boundaries, error) {
	path := filepath.Join(cfg.Dir(m), config.BoundariesFile)
	fc, bound, err := geo.LoadFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	params, err := m.ProjectionFor(&bound)
	if err != nil {
		return nil, err
	}

	return &Boundaries{
		Features: fc.Features,
		Bound:    bound,
		Params:   params,
	}, nil
}

// readSource loads a remote URL or local file.
func readSource(client *http.Client, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		// Explicitly ignore close error as it's a read-only operation
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	}

	return os.ReadFile(source)
}

// saveGeoJSON marshals the feature collection and writes it to disk.
func saveGeoJSON(dir, path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}

	return writeFile(path, bytes.NewReader(data))
}

// writeFile writes through a temporary file so readers never see a partial
// artefact.
func writeFile(path string, r io.Reader) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
