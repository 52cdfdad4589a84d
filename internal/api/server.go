// Package api exposes wallkit over a local HTTP API so bars, scripts and
// widgets can drive wallpaper changes without shelling out.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wallkit/wallkit/internal/effects"
	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/settings"
	"github.com/wallkit/wallkit/internal/wallpaper"
)

// Server represents the HTTP API server
type Server struct {
	router  *mux.Router
	manager *wallpaper.Manager
	cfg     *settings.Store
}

// NewServer creates a new API server
func NewServer(manager *wallpaper.Manager, cfg *settings.Store) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		manager: manager,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Backend and monitor discovery
	api.HandleFunc("/backends", s.handleGetBackends).Methods("GET")
	api.HandleFunc("/monitors", s.handleGetMonitors).Methods("GET")
	api.HandleFunc("/status", s.handleGetStatus).Methods("GET")

	// Wallpaper control
	api.HandleFunc("/wallpaper", s.handleSetWallpaper).Methods("POST")
	api.HandleFunc("/wallpaper/next", s.handleNext).Methods("POST")
	api.HandleFunc("/wallpaper/prev", s.handlePrev).Methods("POST")
	api.HandleFunc("/wallpaper/random", s.handleRandom).Methods("POST")
	api.HandleFunc("/wallpaper/restore", s.handleRestore).Methods("POST")
	api.HandleFunc("/wallpapers", s.handleListWallpapers).Methods("GET")

	// Settings
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods("PUT")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger.WithComponent("api").Info().Str("addr", addr).Msg("Starting API server")
	return http.ListenAndServe(addr, s.Handler())
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// HTTP Handlers

func (s *Server) handleGetBackends(w http.ResponseWriter, r *http.Request) {
	reg := s.manager.Registry()
	writeJSON(w, map[string]interface{}{
		"candidates": reg.Names(),
		"active":     reg.ActiveName(),
	})
}

func (s *Server) handleGetMonitors(w http.ResponseWriter, r *http.Request) {
	b, err := s.manager.Registry().Active()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, b.Monitors())
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"backend":  s.manager.Registry().ActiveName(),
		"monitors": map[string]string{},
	}

	if b, err := s.manager.Registry().Active(); err == nil {
		status["backend"] = b.Name()
		status["active_monitor"] = b.ActiveMonitor()
		current := make(map[string]string)
		for _, c := range s.manager.States().Connectors() {
			current[c] = s.manager.States().Get(c)
		}
		status["monitors"] = current
	}
	writeJSON(w, status)
}

func (s *Server) handleSetWallpaper(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image      string `json:"image"`
		Monitor    string `json:"monitor"`
		Transition string `json:"transition"`
		Effect     string `json:"effect"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		http.Error(w, "image is required", http.StatusBadRequest)
		return
	}
	if req.Transition != "" {
		if err := s.cfg.SetTransition(req.Transition); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if req.Effect != "" {
		if !effects.Known(req.Effect) {
			http.Error(w, fmt.Sprintf("unknown effect: %s", req.Effect), http.StatusBadRequest)
			return
		}
		if err := s.cfg.SetEffect(req.Effect); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if err := s.manager.Apply(req.Image, req.Monitor); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "success", "image": req.Image})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.handleStep(w, r, s.manager.Next)
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.handleStep(w, r, s.manager.Prev)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.handleStep(w, r, s.manager.Random)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, step func(string) (string, error)) {
	target := r.URL.Query().Get("monitor")
	if target == "" {
		target = s.cfg.KeybindMode()
	}

	image, err := step(target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "success", "image": image})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Restore(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

func (s *Server) handleListWallpapers(w http.ResponseWriter, r *http.Request) {
	wallpapers, err := s.manager.Library().List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if wallpapers == nil {
		wallpapers = []string{}
	}
	writeJSON(w, wallpapers)
}

// settingsView is the mutable settings surface of the API.
type settingsView struct {
	Transition     string `json:"transition"`
	Effect         string `json:"effect"`
	Scaling        string `json:"scaling"`
	KeybindMode    string `json:"keybind_mode"`
	MatugenEnabled *bool  `json:"matugen_enabled,omitempty"`
	MatugenScheme  string `json:"matugen_scheme"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	enabled := s.cfg.MatugenEnabled()
	writeJSON(w, settingsView{
		Transition:     s.cfg.Transition(),
		Effect:         s.cfg.Effect(),
		Scaling:        s.cfg.Scaling(),
		KeybindMode:    s.cfg.KeybindMode(),
		MatugenEnabled: &enabled,
		MatugenScheme:  s.cfg.MatugenScheme(),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsView
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	update := func(value string, set func(string) error) bool {
		if value == "" {
			return true
		}
		if err := set(value); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return false
		}
		return true
	}
	if !update(req.Transition, s.cfg.SetTransition) ||
		!update(req.Effect, s.cfg.SetEffect) ||
		!update(req.Scaling, s.cfg.SetScaling) ||
		!update(req.KeybindMode, s.cfg.SetKeybindMode) ||
		!update(req.MatugenScheme, s.cfg.SetMatugenScheme) {
		return
	}
	if req.MatugenEnabled != nil {
		if err := s.cfg.SetMatugenEnabled(*req.MatugenEnabled); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, map[string]string{"status": "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"backend": s.manager.Registry().ActiveName(),
	})
}
