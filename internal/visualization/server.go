package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nervelab/neuroplex/internal/store"
)

// Server serves a recorded run's chart page and raw tick series over
// HTTP for local inspection.
type Server struct {
	store      *store.RunStore
	runID      string
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a viewer for one recorded run.
func NewServer(rs *store.RunStore, runID string) *Server {
	return &Server{
		store: rs,
		runID: runID,
	}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/series", s.handleSeries)

	// Let the OS pick a free port.
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: mux}
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleIndex serves the chart page for the configured run.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	meta, err := s.store.Run(r.Context(), s.runID)
	if err != nil {
		http.Error(w, "run not found: "+s.runID, http.StatusNotFound)
		return
	}
	series, err := s.store.TickSeries(r.Context(), s.runID)
	if err != nil {
		http.Error(w, "load series: "+err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := RenderHTML(series, meta.Name)
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleSeries returns the run's tick series as JSON.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Run(r.Context(), s.runID); err != nil {
		http.Error(w, "run not found: "+s.runID, http.StatusNotFound)
		return
	}
	series, err := s.store.TickSeries(r.Context(), s.runID)
	if err != nil {
		http.Error(w, "load series: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(series)
}
