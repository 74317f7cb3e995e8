package inspector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avolkhov/npcbrain/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The inspector is a local diagnostics endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server exposes /ws and periodically broadcasts simulation snapshots.
type Server struct {
	addr     string
	hub      *Hub
	simWorld *sim.Simulation
	interval time.Duration
}

// NewServer creates an inspector server broadcasting every interval.
func NewServer(addr string, simWorld *sim.Simulation, interval time.Duration) *Server {
	return &Server{
		addr:     addr,
		hub:      NewHub(),
		simWorld: simWorld,
		interval: interval,
	}
}

// Hub returns the subscriber hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves websocket clients and the broadcast loop until the context
// is canceled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("inspector started", "addr", s.addr, "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("inspector shutdown", "error", err)
			}
			return ctx.Err()

		case err := <-errCh:
			return fmt.Errorf("inspector listen on %s: %w", s.addr, err)

		case <-ticker.C:
			if s.hub.Count() > 0 {
				s.hub.Broadcast(s.simWorld.Snapshot())
			}
		}
	}
}

// handleWS upgrades the connection and drains the read side until the
// client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("inspector upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := s.hub.Subscribe(conn)
	defer s.hub.Unsubscribe(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
