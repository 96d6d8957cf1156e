package pathgen

import (
	"fmt"

	"github.com/woozymasta/mahamap/internal/geo"
)

// Name returns the display name from props: the primary key, then the
// fallback key, then "".
func Name(props map[string]any, keys geo.NameKeys) string {
	for _, key := range []string{keys.Primary, keys.Fallback} {
		if key == "" {
			continue
		}
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}

	return ""
}

// Generate converts every feature of the request, preserving input order.
// Result IDs equal the feature index and the response echoes the request ID.
// Name keys set on the request take precedence over keys.
func Generate(req geo.PathRequest, keys geo.NameKeys) geo.PathResponse {
	if req.Names != nil {
		keys = *req.Names
	}
	keys = keys.WithDefaults()

	resp := geo.PathResponse{
		Type:  geo.MessagePathsReady,
		ID:    req.ID,
		Paths: make([]geo.PathResult, len(req.Features)),
	}

	for i, f := range req.Features {
		resp.Paths[i] = geo.PathResult{
			ID:   i,
			Name: Name(f.Properties, keys),
			Path: FeaturePath(f, req.Params),
		}
	}

	return resp
}
