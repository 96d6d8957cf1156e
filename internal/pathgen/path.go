package pathgen

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/woozymasta/mahamap/internal/geo"
)

// RingPath renders a ring as a closed SVG subpath: a move-to to the first
// projected point, a line-to for each following point, then close.
// The first and last point need not be equal. An empty ring yields "".
func RingPath(ring orb.Ring, p geo.Params) string {
	if len(ring) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(ring) * 24)
	for i, pt := range ring {
		x, y := p.Project(pt[0], pt[1])
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(formatCoord(x))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(y))
	}
	sb.WriteString(" Z")

	return sb.String()
}

// RawRingPath renders an untyped ring. Input that is not a sequence of
// coordinate pairs yields "".
func RawRingPath(v any, p geo.Params) string {
	return RingPath(toRing(v), p)
}

// Rings flattens a geometry into its rings in drawing order.
func Rings(g orb.Geometry) []orb.Ring {
	switch v := g.(type) {
	case orb.Ring:
		return []orb.Ring{v}
	case orb.Polygon:
		return []orb.Ring(v)
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(v))
		for _, poly := range v {
			rings = append(rings, poly...)
		}
		return rings
	}

	return nil
}

// GeometryPath renders all rings of a geometry joined by single spaces.
// Polygons of a MultiPolygon are concatenated without any grouping.
func GeometryPath(g orb.Geometry, p geo.Params) string {
	rings := Rings(g)
	parts := make([]string, 0, len(rings))
	for _, ring := range rings {
		if s := RingPath(ring, p); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " ")
}

// FeaturePath classifies the feature coordinates and renders them.
// Empty or malformed geometry yields "".
func FeaturePath(f geo.Feature, p geo.Params) string {
	g, kind := Classify(f.Geometry.Coordinates)
	if kind == KindNone {
		return ""
	}

	return GeometryPath(g, p)
}

// ProjectRings returns the feature rings in canvas coordinates.
func ProjectRings(f geo.Feature, p geo.Params) []orb.Ring {
	g, _ := Classify(f.Geometry.Coordinates)
	rings := Rings(g)

	out := make([]orb.Ring, 0, len(rings))
	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		projected := make(orb.Ring, len(ring))
		for i, pt := range ring {
			projected[i] = p.ProjectPoint(pt)
		}
		out = append(out, projected)
	}

	return out
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProjectFeatures returns the projected rings of every feature, in order.
func ProjectFeatures(features []geo.Feature, p geo.Params) [][]orb.Ring {
	out := make([][]orb.Ring, len(features))
	for i, f := range features {
		out[i] = ProjectRings(f, p)
	}

	return out
}
