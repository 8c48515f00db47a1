package debugtransport

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/rv32iss/rv32iss/internal/debugger"
)

// Server exposes a running Debugger's state and execution events over
// HTTP + WebSocket, grounded on the teacher's api.Server (api/server.go),
// trimmed to a single-session debug channel (the config.Remote section
// names one listen address, not a session pool).
type Server struct {
	debugger    *debugger.Debugger
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	addr        string
}

// NewServer builds a Server bound to addr (config.Remote.Listen), backed
// by the given debugger.
func NewServer(addr string, d *debugger.Debugger) *Server {
	s := &Server{
		debugger:    d,
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		addr:        addr,
	}
	s.registerRoutes()
	return s
}

// Broadcaster exposes the underlying event fan-out so callers can publish
// state/execution events of their own; the CLI does not use it.
func (s *Server) Broadcaster() *Broadcaster { return s.broadcaster }

// Handler returns the server's routed mux, letting callers (tests,
// alternative listeners) drive it without a real Start/Listen cycle.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", HandleWebSocket(s.broadcaster))
	s.mux.HandleFunc("/command", s.handleCommand)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// handleCommand runs one debugger command line submitted as JSON
// {"command": "..."} and returns its textual output.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := s.debugger.ExecuteCommand(req.Command)
	resp := commandResponse{Output: s.debugger.GetOutput()}
	if err != nil {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)

	s.broadcaster.BroadcastState("", map[string]interface{}{
		"pc": s.debugger.Machine.Hart.PC,
	})
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("debug transport listening on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and closes the broadcaster,
// disconnecting every WebSocket client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
