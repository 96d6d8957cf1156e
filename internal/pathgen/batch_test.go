package pathgen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/woozymasta/mahamap/internal/geo"
)

func TestName(t *testing.T) {
	keys := geo.NameKeys{Primary: "district", Fallback: "dtname"}

	cases := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"primary", map[string]any{"district": "Pune", "dtname": "PUNE"}, "Pune"},
		{"fallback", map[string]any{"dtname": "Satara"}, "Satara"},
		{"primary nil", map[string]any{"district": nil, "dtname": "Sangli"}, "Sangli"},
		{"neither", map[string]any{"name": "Kolhapur"}, ""},
		{"nil props", nil, ""},
		{"number", map[string]any{"district": json.Number("27")}, "27"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Name(tc.props, keys); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

const batchRequest = `{
  "type": "generate-paths",
  "id": "req-7",
  "scale": 1,
  "centerLon": 0,
  "centerLat": 0,
  "features": [
    {"properties": {"district": "Nagpur"}, "geometry": {"coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
    {"properties": {"dtname": "Wardha"}, "geometry": {"coordinates": []}},
    {"properties": {}, "geometry": {}},
    {"properties": {"district": "Gondiya"}, "geometry": {"coordinates": [[[[2,2],[3,2],[3,3]]],[[[4,4],[5,4],[5,5]]]]}}
  ]
}`

func TestGenerate(t *testing.T) {
	var req geo.PathRequest
	if err := json.Unmarshal([]byte(batchRequest), &req); err != nil {
		t.Fatal(err)
	}

	resp := Generate(req, geo.NameKeys{})
	if resp.Type != geo.MessagePathsReady {
		t.Errorf("type = %q", resp.Type)
	}
	if resp.ID != "req-7" {
		t.Errorf("id = %q, want echoed req-7", resp.ID)
	}
	if len(resp.Paths) != len(req.Features) {
		t.Fatalf("got %d results for %d features", len(resp.Paths), len(req.Features))
	}

	for i, p := range resp.Paths {
		if p.ID != i {
			t.Errorf("result %d has id %d", i, p.ID)
		}
	}

	wantNames := []string{"Nagpur", "Wardha", "", "Gondiya"}
	for i, want := range wantNames {
		if resp.Paths[i].Name != want {
			t.Errorf("result %d name = %q, want %q", i, resp.Paths[i].Name, want)
		}
	}

	if !strings.HasPrefix(resp.Paths[0].Path, "M 400 450 L 401 450") {
		t.Errorf("unexpected path %q", resp.Paths[0].Path)
	}
	if resp.Paths[1].Path != "" || resp.Paths[2].Path != "" {
		t.Errorf("empty geometries must yield empty paths: %q %q", resp.Paths[1].Path, resp.Paths[2].Path)
	}
	if n := strings.Count(resp.Paths[3].Path, "M "); n != 2 {
		t.Errorf("multipolygon gave %d subpaths, want 2", n)
	}
}

func TestGenerateRequestNameKeys(t *testing.T) {
	req := geo.PathRequest{
		Names: &geo.NameKeys{Primary: "NAME_2"},
		Features: []geo.Feature{
			{Properties: map[string]any{"NAME_2": "Thane", "district": "ignored"}},
			{Properties: map[string]any{"dtname": "Palghar"}},
		},
	}

	resp := Generate(req, geo.NameKeys{Primary: "district"})
	if resp.Paths[0].Name != "Thane" {
		t.Errorf("request keys ignored: %q", resp.Paths[0].Name)
	}
	if resp.Paths[1].Name != "Palghar" {
		t.Errorf("default fallback not applied: %q", resp.Paths[1].Name)
	}
}

func TestGenerateEmpty(t *testing.T) {
	resp := Generate(geo.PathRequest{ID: "x"}, geo.NameKeys{})
	if resp.Paths == nil || len(resp.Paths) != 0 {
		t.Fatalf("want an empty, non-nil result list, got %#v", resp.Paths)
	}
}
