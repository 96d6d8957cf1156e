// Package pathgen converts boundary features into SVG path strings.
package pathgen

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// Kind is the geometry variant of a feature.
type Kind int

// Geometry kinds.
const (
	KindNone Kind = iota
	KindRing
	KindPolygon
	KindMultiPolygon
)

// String returns the GeoJSON-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRing:
		return "Ring"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	}
	return "None"
}

// Classify resolves feature coordinates into a typed geometry.
//
// Typed orb values are returned as is. Untyped coordinates are classified by
// nesting depth: if coordinates[0][0][0] is a sequence the value is a
// MultiPolygon, else if coordinates[0][0] is a sequence it is a Polygon,
// otherwise nothing can be drawn and KindNone is returned.
//
// A malformed ring inside a recognised geometry is kept as an empty ring so
// ring counts and order are preserved.
func Classify(coords any) (orb.Geometry, Kind) {
	switch c := coords.(type) {
	case orb.Ring:
		return c, KindRing
	case orb.Polygon:
		return c, KindPolygon
	case orb.MultiPolygon:
		return c, KindMultiPolygon
	case nil:
		return nil, KindNone
	}

	root, ok := asSlice(coords)
	if !ok || len(root) == 0 {
		return nil, KindNone
	}
	first, ok := asSlice(root[0])
	if !ok || len(first) == 0 {
		return nil, KindNone
	}

	if firstRing, ok := asSlice(first[0]); ok && len(firstRing) > 0 {
		if _, ok := asSlice(firstRing[0]); ok {
			return toMultiPolygon(root), KindMultiPolygon
		}
	}
	if _, ok := asSlice(first[0]); ok {
		return toPolygon(root), KindPolygon
	}

	return nil, KindNone
}

func toMultiPolygon(v []any) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(v))
	for _, el := range v {
		rings, ok := asSlice(el)
		if !ok {
			mp = append(mp, orb.Polygon{})
			continue
		}
		mp = append(mp, toPolygon(rings))
	}

	return mp
}

func toPolygon(v []any) orb.Polygon {
	poly := make(orb.Polygon, 0, len(v))
	for _, el := range v {
		poly = append(poly, toRing(el))
	}

	return poly
}

// toRing converts an untyped ring. Anything that is not a sequence of
// coordinate pairs yields an empty ring.
func toRing(v any) orb.Ring {
	points, ok := asSlice(v)
	if !ok || len(points) == 0 {
		return nil
	}

	ring := make(orb.Ring, 0, len(points))
	for _, p := range points {
		pt, ok := asPoint(p)
		if !ok {
			return nil
		}
		ring = append(ring, pt)
	}

	return ring
}

// asSlice unwraps the sequence shapes produced by encoding/json, yaml.v3
// and plain Go literals.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case [][]float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case [][][]float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case [][][][]float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	}

	return nil, false
}

func asPoint(v any) (orb.Point, bool) {
	s, ok := asSlice(v)
	if !ok || len(s) < 2 {
		return orb.Point{}, false
	}
	lon, lok := asFloat(s[0])
	lat, aok := asFloat(s[1])
	if !lok || !aok {
		return orb.Point{}, false
	}

	return orb.Point{lon, lat}, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}

	return 0, false
}
