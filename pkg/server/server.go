package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"cardwatch/pkg/config"
	"cardwatch/pkg/parser"
	"cardwatch/pkg/store"
)

// maxBodyBytes caps ingestion payloads. OCR dumps of a phone screen are a few
// KB; anything near the cap is not a screen capture.
const maxBodyBytes = 256 << 10

// Server handles HTTP requests for payload ingestion and account queries.
type Server struct {
	config *config.Config
	logger *log.Logger
	mux    *http.ServeMux
	parser *parser.Parser
	store  *store.Store
	routes sync.Once
}

// New creates a new HTTP server.
func New(cfg *config.Config, logger *log.Logger, p *parser.Parser, st *store.Store) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		parser: p,
		store:  st,
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.routes.Do(s.setupRoutes)
	return http.ListenAndServe(addr, s.mux)
}

// Handler exposes the configured mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	s.routes.Do(s.setupRoutes)
	return s.mux
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.withLogging(s.handleHealth))

	s.mux.HandleFunc("/ingest", s.withLogging(s.handleIngest))
	// Back-compat with the old route name
	s.mux.HandleFunc("/update-balances", s.withLogging(s.handleIngest))

	s.mux.HandleFunc("/balances", s.withLogging(s.handleBalances))
	// Back-compat with the old route name
	s.mux.HandleFunc("/balance", s.withLogging(s.handleBalances))

	s.mux.HandleFunc("/summary", s.withLogging(s.handleSummary))

	s.mux.HandleFunc("/", s.withLogging(s.handleNotFound))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	_ = s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":     "Not found",
		"path":      r.URL.Path,
		"endpoints": []string{"/health", "/ingest", "/balances", "/summary"},
	})
}

// authOK checks the shared-secret gate on read endpoints. No configured key
// means open access.
func (s *Server) authOK(r *http.Request) bool {
	if s.config.APIKey == "" {
		return true
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		key = r.URL.Query().Get("api_key")
	}
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	return key == s.config.APIKey
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// withLogging wraps a handler to log requests, apply CORS, cap the body size
// and recover panics. A panic during parsing becomes a 500 without touching
// previously committed state.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "Parse failed", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
