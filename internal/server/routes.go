package server

import "net/http"

// Routes returns the logged handler with all endpoints registered.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/maps", s.HandleMapsList)
	mux.HandleFunc("/api/maps/", s.HandleMapAPI)
	mux.HandleFunc("/api/paths", s.HandleGeneratePaths)
	mux.HandleFunc("/api/cache/clear", s.HandleCacheClear)
	mux.HandleFunc("/api/reload", s.HandleReload)
	mux.HandleFunc("/healthz", s.HandleHealth)
	mux.HandleFunc("/maps/", s.HandleMapAsset)

	return RequestLogger(mux)
}
