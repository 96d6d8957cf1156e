// Package geo handles geographic data structures and the map projection.
package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Bound is an axis-aligned lon/lat rectangle.
type Bound = orb.Bound

// FeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature represents a single boundary with its geometry and properties.
type Feature struct {
	Properties map[string]any `json:"properties" yaml:"properties"`
	Type       string         `json:"type" yaml:"type"`
	Geometry   Geometry       `json:"geometry" yaml:"geometry"`
}

// Geometry holds feature coordinates.
//
// Coordinates is either untyped nested []any as decoded from external JSON,
// or one of orb.Ring, orb.Polygon, orb.MultiPolygon when the feature was
// built from a typed source.
type Geometry struct {
	Type        string `json:"type" yaml:"type"`
	Coordinates any    `json:"coordinates" yaml:"coordinates"`
}

// FromOrb converts an orb feature into a Feature with typed coordinates.
// Non polygonal geometries are kept with nil coordinates.
func FromOrb(f *geojson.Feature) Feature {
	out := Feature{
		Type:       "Feature",
		Properties: map[string]any(f.Properties),
	}
	if out.Properties == nil {
		out.Properties = map[string]any{}
	}
	if f.Geometry == nil {
		return out
	}

	out.Geometry.Type = f.Geometry.GeoJSONType()
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		out.Geometry.Coordinates = g
	case orb.MultiPolygon:
		out.Geometry.Coordinates = g
	case orb.Ring:
		out.Geometry.Coordinates = g
	case orb.LineString:
		// closed line strings are treated as rings
		out.Geometry.Coordinates = orb.Ring(g)
	}

	return out
}

// FromOrbCollection converts every feature of fc, preserving order.
func FromOrbCollection(fc *geojson.FeatureCollection) FeatureCollection {
	out := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(fc.Features)),
	}
	for _, f := range fc.Features {
		out.Features = append(out.Features, FromOrb(f))
	}

	return out
}

// IsPolygonal reports whether the orb geometry can be rendered as filled rings.
func IsPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.Ring:
		return true
	}
	return false
}

// ParseFeatureCollection decodes GeoJSON bytes with orb.
func ParseFeatureCollection(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	return fc, nil
}

// LoadFeatureCollection reads a GeoJSON file and returns typed features
// together with the bound of all geometries.
func LoadFeatureCollection(path string) (FeatureCollection, orb.Bound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FeatureCollection{}, orb.Bound{}, err
	}

	fc, err := ParseFeatureCollection(data)
	if err != nil {
		return FeatureCollection{}, orb.Bound{}, fmt.Errorf("%s: %w", path, err)
	}

	return FromOrbCollection(fc), CollectionBound(fc), nil
}

// CollectionBound returns the union bound of all feature geometries.
func CollectionBound(fc *geojson.FeatureCollection) orb.Bound {
	var bound orb.Bound
	first := true
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if first {
			bound = b
			first = false
			continue
		}
		bound = bound.Union(b)
	}

	return bound
}
