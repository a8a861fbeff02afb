// Package api provides a read-only HTTP API for watching a game in progress.
// Handlers serve the view published after the last resolved turn and never
// touch the live world.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/talgya/civsim/internal/engine"
	"github.com/talgya/civsim/internal/persistence"
	"github.com/talgya/civsim/internal/render"
)

// View is an immutable copy of the game as of one turn boundary.
type View struct {
	Turn     int                  `json:"turn"`
	State    string               `json:"state"`
	Map      string               `json:"map"`
	Status   []string             `json:"status"`
	Snapshot persistence.Snapshot `json:"snapshot"`
}

// Server serves the published views over HTTP.
type Server struct {
	Addr string

	mu      sync.RWMutex
	view    *View
	reports []engine.TurnReport

	limiter *RateLimiter
}

// NewServer creates a server listening on addr. Each client IP may make
// 120 requests per minute.
func NewServer(addr string) *Server {
	return &Server{
		Addr:    addr,
		limiter: NewRateLimiter(120, time.Minute),
	}
}

// Publish records w as the current view. A non-nil report is appended to the
// turn history. It must be called from the goroutine that owns w.
func (s *Server) Publish(w *engine.World, state engine.State, report *engine.TurnReport) {
	status := make([]string, len(w.Cities))
	for i, c := range w.Cities {
		status[i] = c.Status()
	}
	v := &View{
		Turn:     w.Turn,
		State:    state.String(),
		Map:      render.Render(w.Grid, w.Cities, w.Units),
		Status:   status,
		Snapshot: persistence.Capture(w),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	if report != nil {
		s.reports = append(s.reports, *report)
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/map", s.handleMap)
	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/reports", s.handleReports)
	mux.HandleFunc("GET /api/v1/reports/{turn}", s.handleReport)
	return corsMiddleware(RateLimitMiddleware(s.limiter, mux))
}

// Serve listens on Addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP API starting", "addr", s.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsMiddleware lets any origin read the API. Nothing here takes
// credentials or changes state.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) current(w http.ResponseWriter) (*View, bool) {
	s.mu.RLock()
	v := s.view
	s.mu.RUnlock()
	if v == nil {
		http.Error(w, "world not ready", http.StatusServiceUnavailable)
		return nil, false
	}
	return v, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	v, ok := s.current(w)
	if !ok {
		return
	}
	s.mu.RLock()
	turns := len(s.reports)
	s.mu.RUnlock()
	writeJSON(w, map[string]any{
		"name":     "civsim",
		"turn":     v.Turn,
		"state":    v.State,
		"resolved": turns,
		"cities":   v.Status,
	})
}

// handleMap returns the symbol map as plain text.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	v, ok := s.current(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(v.Map))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	v, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, v.Snapshot)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	reports := append([]engine.TurnReport{}, s.reports...)
	s.mu.RUnlock()
	writeJSON(w, reports)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	turn, err := strconv.Atoi(r.PathValue("turn"))
	if err != nil {
		http.Error(w, "invalid turn", http.StatusBadRequest)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rep := range s.reports {
		if rep.Turn == turn {
			writeJSON(w, rep)
			return
		}
	}
	http.Error(w, "turn not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
