// Package server is the reference REST backend for taskdeck: tasks, lists,
// tags and natural-language parsing over JSON, persisted in SQLite.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"taskdeck/internal/store"
)

type Config struct {
	Addr   string
	Logger *slog.Logger
	// Now defaults to time.Now. Tests pin it for deterministic dates.
	Now func() time.Time
}

type Server struct {
	cfg     Config
	db      *store.DB
	log     *slog.Logger
	now     func() time.Time
	metrics *metrics
}

func New(db *store.DB, cfg Config) (*Server, error) {
	if db == nil {
		return nil, errors.New("server: nil store")
	}
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Server{
		cfg:     cfg,
		db:      db,
		log:     cfg.Logger,
		now:     cfg.Now,
		metrics: newMetrics(),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())

	mux.HandleFunc("GET /tasks", s.handleTaskList)
	mux.HandleFunc("POST /tasks", s.handleTaskCreate)
	mux.HandleFunc("POST /tasks/parse-natural-language", s.handleParse)
	mux.HandleFunc("GET /tasks/{taskId}", s.handleTaskGet)
	mux.HandleFunc("PUT /tasks/{taskId}", s.handleTaskUpdate)
	mux.HandleFunc("DELETE /tasks/{taskId}", s.handleTaskDelete)

	mux.HandleFunc("GET /lists", s.handleListList)
	mux.HandleFunc("POST /lists", s.handleListCreate)
	mux.HandleFunc("DELETE /lists/{name}", s.handleListDelete)

	mux.HandleFunc("GET /tags", s.handleTagList)
	mux.HandleFunc("POST /tags", s.handleTagCreate)
	mux.HandleFunc("DELETE /tags/{name}", s.handleTagDelete)

	return s.instrument(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task Manager API is running"})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs one line per request and feeds the request metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		took := time.Since(start)

		// ServeMux fills in Pattern on the same request value.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.observe(r.Method, route, rec.code, took)

		level := slog.LevelInfo
		if rec.code >= 500 {
			level = slog.LevelError
		} else if rec.code >= 400 {
			level = slog.LevelWarn
		}
		s.log.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"took", took,
		)
	})
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorBody{Detail: detail})
}

// writeStoreError maps store failures that escaped validation to a 500.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, what string, err error) {
	s.log.Error(what, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, what+": "+err.Error())
}
