// Package server handles HTTP requests and middleware.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mahamap/internal/cache"
	"github.com/woozymasta/mahamap/internal/config"
	"github.com/woozymasta/mahamap/internal/geo"
	"github.com/woozymasta/mahamap/internal/processor"
	"github.com/woozymasta/mahamap/internal/render"
)

const (
	etagCap = 64

	// maxRequestBody bounds POST /api/paths bodies.
	maxRequestBody = 32 << 20
)

// HandleMapsList serves the JSON configuration of available maps.
func (s *ServerContext) HandleMapsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.Maps())
}

// HandleMapAPI serves /api/maps/{name}/paths.
func (s *ServerContext) HandleMapAPI(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// parts: api, maps, name, paths
	if len(parts) != 4 || parts[3] != "paths" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Cache.InMaintenance() {
		writeError(w, http.StatusServiceUnavailable, "maintenance in progress")
		return
	}

	// generation must be read before the boundaries it guards
	gen := s.Cache.Generation()
	m, b, ok := s.lookup(parts[2])
	if !ok {
		http.NotFound(w, r)
		return
	}

	resp, err := s.mapPaths(r.Context(), m, b, gen)
	if err != nil {
		log.Error().Err(err).Str("map", m.Name).Msg("Failed to generate paths")
		writeError(w, http.StatusInternalServerError, "path generation failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGeneratePaths converts a posted PathRequest through the worker pool.
func (s *ServerContext) HandleGeneratePaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Cache.InMaintenance() {
		writeError(w, http.StatusServiceUnavailable, "maintenance in progress")
		return
	}

	var req geo.PathRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Type != "" && req.Type != geo.MessageGeneratePaths {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unexpected message type %q", req.Type))
		return
	}

	resp, err := s.Pool.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("Failed to generate paths")
		writeError(w, http.StatusServiceUnavailable, "path generation unavailable")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMapAsset serves map artefacts: the SVG document, stored boundaries,
// the preview image and raster tiles.
func (s *ServerContext) HandleMapAsset(w http.ResponseWriter, r *http.Request) {
	// Path: /maps/{mapName}/...
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 {
		http.NotFound(w, r)
		return
	}

	gen := s.Cache.Generation()
	m, b, ok := s.lookup(parts[1])
	if !ok {
		http.NotFound(w, r)
		return
	}
	mapDir := s.Config.Dir(m)

	switch {
	case len(parts) == 3 && parts[2] == "map.svg":
		if s.Cache.InMaintenance() {
			writeError(w, http.StatusServiceUnavailable, "maintenance in progress")
			return
		}
		s.serveSVG(w, r, m, b, gen)

	case len(parts) == 3 && parts[2] == config.BoundariesFile:
		if !s.serveFile(w, r, filepath.Join(mapDir, config.BoundariesFile), "application/geo+json") {
			http.NotFound(w, r)
		}

	case len(parts) == 3 && parts[2] == config.PreviewFile:
		if !s.serveFile(w, r, filepath.Join(mapDir, config.PreviewFile), "image/webp") {
			http.NotFound(w, r)
		}

	case len(parts) == 6 && parts[2] == config.TilesDir:
		// parts: maps, mapName, tiles, z, x, y.webp
		z, x, y := parts[3], parts[4], parts[5]
		if !isNumber(z) || !isNumber(x) || !strings.HasSuffix(y, ".webp") || !isNumber(strings.TrimSuffix(y, ".webp")) {
			http.NotFound(w, r)
			return
		}
		if s.serveFile(w, r, filepath.Join(mapDir, config.TilesDir, z, x, y), "image/webp") {
			return
		}

		// cache transparent tile
		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(s.TransparentTile)

	default:
		http.NotFound(w, r)
	}
}

// HandleCacheClear removes cached entries matching the "pattern" prefix.
func (s *ServerContext) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pattern := r.URL.Query().Get("pattern")
	removed := s.Cache.DeletePattern(pattern)

	writeJSON(w, http.StatusOK, map[string]any{
		"pattern": pattern,
		"removed": removed,
	})
}

// HandleReload switches the cache into maintenance, reloads boundaries from
// disk and resumes serving. Requests repopulate the cache afterwards.
func (s *ServerContext) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	s.reloadMu.Lock()
	s.Cache.BeginMaintenance()
	loaded := s.Reload()
	s.Cache.EndMaintenance()
	s.reloadMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"maps": loaded,
	})
}

// HandleHealth reports liveness and maintenance state.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.Cache.InMaintenance() {
		status = "maintenance"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"maps":   len(s.Maps()),
	})
}

// mapPaths returns the cached paths of a map, generating them on a miss.
// The result is cached only if the cache is still at generation gen, so
// paths built from boundaries replaced by a reload are never stored.
func (s *ServerContext) mapPaths(ctx context.Context, m config.Map, b *processor.Boundaries, gen uint64) (geo.PathResponse, error) {
	key := cache.Key(cache.PrefixPaths, m.Name)
	if v, ok := s.Cache.Get(key); ok {
		if resp, ok := v.(geo.PathResponse); ok {
			return resp, nil
		}
	}

	resp, err := s.Pool.Generate(ctx, geo.PathRequest{
		Type:     geo.MessageGeneratePaths,
		ID:       m.Name,
		Names:    &m.NameKeys,
		Features: b.Features,
		Params:   b.Params,
	})
	if err != nil {
		return geo.PathResponse{}, err
	}

	s.Cache.SetIfGeneration(key, resp, gen)
	return resp, nil
}

func (s *ServerContext) serveSVG(w http.ResponseWriter, r *http.Request, m config.Map, b *processor.Boundaries, gen uint64) {
	key := cache.Key(cache.PrefixSVG, m.Name)

	doc, ok := s.cachedBytes(key)
	if !ok {
		resp, err := s.mapPaths(r.Context(), m, b, gen)
		if err != nil {
			log.Error().Err(err).Str("map", m.Name).Msg("Failed to generate paths")
			writeError(w, http.StatusInternalServerError, "path generation failed")
			return
		}

		doc, err = render.SVG(resp.Paths, render.SVGOptions{
			Title:       m.Title,
			Attribution: m.Attribution,
		})
		if err != nil {
			log.Error().Err(err).Str("map", m.Name).Msg("Failed to render svg")
			writeError(w, http.StatusInternalServerError, "svg rendering failed")
			return
		}
		s.Cache.SetIfGeneration(key, doc, gen)
	}

	h := fnv.New64a()
	_, _ = h.Write(doc)
	etag := fmt.Sprintf(`"%x"`, h.Sum64())
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(doc)
}

func (s *ServerContext) cachedBytes(key string) ([]byte, bool) {
	v, ok := s.Cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// authorized checks the bearer token when an admin token is configured.
func (s *ServerContext) authorized(r *http.Request) bool {
	if s.Config.AdminToken == "" {
		return true
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.Config.AdminToken)) == 1
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
