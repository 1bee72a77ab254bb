// Package server is the development graph API: the same read surface the
// production dashboard backend exposes, served from a YAML dataset file. It
// also pushes live refresh notifications when the dataset changes on disk.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tracive/linkscope/internal/dataset"
	"github.com/tracive/linkscope/pkg/graph"
)

const (
	defaultLimit = 100
	maxLimit     = 500
	maxDepth     = 3
)

// Server serves graph data over HTTP plus a websocket live channel.
type Server struct {
	logger *zap.Logger
	hub    *hub

	mu   sync.RWMutex
	path string
	data *dataset.Dataset
}

// New loads the dataset file and builds a server around it.
func New(path string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	return &Server{
		logger: logger,
		hub:    newHub(logger),
		path:   path,
		data:   d,
	}, nil
}

// Handler builds the HTTP routing surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph/entity/{entityID}", s.handleEntity)
	r.Get("/live", s.hub.handleWebSocket)
	return r
}

// ListenAndServe serves until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("graph server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// Reload re-reads the dataset file and notifies live subscribers. Called by
// the file watcher.
func (s *Server) Reload() error {
	d, err := dataset.Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = d
	s.mu.Unlock()
	s.logger.Info("dataset reloaded", zap.String("path", s.path))
	s.hub.broadcast(notification{Type: "graph:update"})
	return nil
}

func (s *Server) snapshot() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

type graphPayload struct {
	Nodes []graph.Node `json:"nodes"`
	Links []graph.Link `json:"links"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGraph is GET /graph?investigation_id=&limit=, the read endpoint the
// viewer consumes.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("investigation_id")
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	nodes, links, err := s.snapshot().Graph(scope, limit)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, graphPayload{Nodes: nodes, Links: links})
}

// handleEntity is GET /graph/entity/{entityID}?depth=, the neighborhood
// fetch centered on one entity.
func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	depth := 1
	if raw := r.URL.Query().Get("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "depth must be a positive integer")
			return
		}
		if n > maxDepth {
			n = maxDepth
		}
		depth = n
	}

	nodes, links, err := s.snapshot().Neighborhood(entityID, depth)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, graphPayload{Nodes: nodes, Links: links})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"detail": msg})
}

// requestLogger logs every request with its status, size, and timing.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		// Websocket upgrades log their own lifecycle.
		if strings.HasPrefix(r.URL.Path, "/live") {
			return
		}
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", chimiddleware.GetReqID(r.Context())),
		)
	})
}
