package pathgen

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/woozymasta/mahamap/internal/geo"
)

var unit = geo.Params{Scale: 1}

func TestRingPathSquare(t *testing.T) {
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}

	path := RingPath(ring, unit)
	if !strings.HasPrefix(path, "M 400 450 L 401 450 L 401 ") {
		t.Fatalf("unexpected path start: %q", path)
	}
	if !strings.HasSuffix(path, " L 400 450 Z") {
		t.Fatalf("unexpected path end: %q", path)
	}
	if n := strings.Count(path, "L "); n != 3 {
		t.Fatalf("got %d line-to commands, want 3", n)
	}
}

func TestRingPathOpenRingIsClosed(t *testing.T) {
	path := RingPath(orb.Ring{{0, 0}, {2, 0}}, unit)
	if path != "M 400 450 L 402 450 Z" {
		t.Fatalf("got %q", path)
	}
}

func TestRingPathEmpty(t *testing.T) {
	if got := RingPath(nil, unit); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := RawRingPath([]any{}, unit); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := RawRingPath([]any{1.0, 2.0}, unit); got != "" {
		t.Fatalf("non array-of-arrays ring gave %q", got)
	}
	if got := RawRingPath("nope", unit); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestRawRingPath(t *testing.T) {
	got := RawRingPath(decode(t, `[[0,0],[2,0]]`), unit)
	if got != "M 400 450 L 402 450 Z" {
		t.Fatalf("got %q", got)
	}
}

func TestFeaturePathSubpathCount(t *testing.T) {
	// polygons with 2, 1 and 3 rings
	coords := decode(t, `[
		[[[0,0],[1,0],[1,1],[0,0]], [[0.2,0.2],[0.4,0.2],[0.4,0.4],[0.2,0.2]]],
		[[[5,5],[6,5],[6,6],[5,5]]],
		[[[9,9],[10,9],[10,10]], [[9.1,9.1],[9.2,9.1],[9.2,9.2]], [[9.5,9.5],[9.6,9.5],[9.6,9.6]]]
	]`)

	path := FeaturePath(geo.Feature{Geometry: geo.Geometry{Coordinates: coords}}, unit)
	if n := strings.Count(path, "M "); n != 6 {
		t.Fatalf("got %d move-to commands, want 6", n)
	}
	if n := strings.Count(path, "Z"); n != 6 {
		t.Fatalf("got %d close commands, want 6", n)
	}
	if strings.Contains(path, "  ") || strings.HasPrefix(path, " ") || strings.HasSuffix(path, " ") {
		t.Fatalf("subpaths must be joined by single spaces: %q", path)
	}
	if !strings.Contains(path, "Z M ") {
		t.Fatalf("rings are not concatenated: %q", path)
	}
}

func TestFeaturePathEmptyGeometry(t *testing.T) {
	cases := map[string]any{
		"nil":       nil,
		"empty":     []any{},
		"bare ring": decode(t, `[[0,0],[1,1],[1,0]]`),
		"garbage":   "polygon",
	}

	for name, coords := range cases {
		f := geo.Feature{Geometry: geo.Geometry{Coordinates: coords}}
		if got := FeaturePath(f, unit); got != "" {
			t.Errorf("%s: got %q, want empty path", name, got)
		}
	}
}

func TestFeaturePathTyped(t *testing.T) {
	f := geo.Feature{Geometry: geo.Geometry{Coordinates: orb.MultiPolygon{
		{{{0, 0}, {1, 0}, {1, 1}}},
		{{{2, 0}, {3, 0}, {3, 1}}, {{2.1, 0.1}, {2.2, 0.1}, {2.2, 0.2}}},
	}}}

	path := FeaturePath(f, unit)
	if n := strings.Count(path, "M "); n != 3 {
		t.Fatalf("got %d subpaths, want 3: %q", n, path)
	}
	if !strings.HasPrefix(path, "M 400 450 L 401 450") {
		t.Fatalf("unexpected start %q", path)
	}
}

func TestProjectFeatures(t *testing.T) {
	features := []geo.Feature{
		{Geometry: geo.Geometry{Coordinates: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}}}}},
		{},
	}

	rings := ProjectFeatures(features, unit)
	if len(rings) != 2 {
		t.Fatalf("got %d entries", len(rings))
	}
	if len(rings[0]) != 1 || rings[0][0][0] != (orb.Point{400, 450}) || rings[0][0][1] != (orb.Point{401, 450}) {
		t.Fatalf("unexpected projected rings %v", rings[0])
	}
	if len(rings[1]) != 0 {
		t.Fatalf("empty feature produced rings %v", rings[1])
	}
}

func TestRingPathPole(t *testing.T) {
	ring := orb.Ring{{0, 0}, {1, 0}, {0, -90}}

	got := RingPath(ring, unit)
	if !strings.HasPrefix(got, "M 400 450 L 401 450 L 400 ") || !strings.HasSuffix(got, " Z") {
		t.Fatalf("path = %q", got)
	}
	if !strings.Contains(got, "+Inf") {
		t.Fatalf("non-finite ordinate not carried: %q", got)
	}
}
