package pathgen

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestClassifyUntyped(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Kind
	}{
		{"polygon single ring", `[[[0,0],[1,0],[1,1],[0,0]]]`, KindPolygon},
		{"polygon with hole", `[[[0,0],[4,0],[4,4],[0,0]],[[1,1],[2,1],[2,2],[1,1]]]`, KindPolygon},
		{"multipolygon", `[[[[0,0],[1,0],[1,1],[0,0]]]]`, KindMultiPolygon},
		{"bare ring", `[[0,0],[1,0],[1,1],[0,0]]`, KindNone},
		{"empty", `[]`, KindNone},
		{"empty first", `[[]]`, KindNone},
		{"null", `null`, KindNone},
		{"scalar", `5`, KindNone},
		{"strings", `[["a","b"]]`, KindNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := Classify(decode(t, tc.input))
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifyTyped(t *testing.T) {
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}}
	cases := []struct {
		input any
		want  Kind
	}{
		{ring, KindRing},
		{orb.Polygon{ring}, KindPolygon},
		{orb.MultiPolygon{{ring}, {ring}}, KindMultiPolygon},
		{nil, KindNone},
	}

	for _, tc := range cases {
		if _, got := Classify(tc.input); got != tc.want {
			t.Errorf("%T: got %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestClassifyGoSlices(t *testing.T) {
	g, kind := Classify([][][]float64{{{0, 0}, {1, 0}, {1, 1}}})
	if kind != KindPolygon {
		t.Fatalf("got %v, want Polygon", kind)
	}
	poly := g.(orb.Polygon)
	if len(poly) != 1 || len(poly[0]) != 3 || poly[0][1] != (orb.Point{1, 0}) {
		t.Fatalf("unexpected polygon %v", poly)
	}
}

func TestClassifyKeepsMalformedRingsEmpty(t *testing.T) {
	g, kind := Classify(decode(t, `[[[0,0],[1,0],[1,1]],[["x",1],[2,2]],[[3,3],[4,4],[5,3]]]`))
	if kind != KindPolygon {
		t.Fatalf("got %v, want Polygon", kind)
	}

	poly := g.(orb.Polygon)
	if len(poly) != 3 {
		t.Fatalf("got %d rings, want 3", len(poly))
	}
	if len(poly[1]) != 0 {
		t.Fatalf("malformed ring should be empty, got %v", poly[1])
	}
}

func TestKindString(t *testing.T) {
	if KindMultiPolygon.String() != "MultiPolygon" || KindNone.String() != "None" {
		t.Fatal("unexpected kind names")
	}
}
