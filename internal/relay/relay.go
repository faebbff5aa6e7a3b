// Package relay serves the engine's WebSocket endpoint. Connected
// frontends receive a snapshot broadcast after every tick and submit
// commands as JSON envelopes, which are routed through the dispatcher.
package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/opsim/engine/internal/dispatcher"
	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/pkg/streaming"
)

// Config holds relay server configuration.
type Config struct {
	ListenAddr string
	Secret     string // optional shared secret checked as a query param
}

// Server accepts WebSocket clients and fans out tick updates.
type Server struct {
	cfg        Config
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger

	upgrader ws.Upgrader
	httpSrv  *http.Server

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// New creates a relay server routing commands through the dispatcher.
func New(cfg Config, d *dispatcher.Dispatcher, logger *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: d,
		logger:     logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start begins listening. It returns once the listener goroutine is up;
// serve errors are logged, not returned.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	s.httpSrv = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Info("Relay listening", "addr", s.cfg.ListenAddr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Relay server error", "error", err)
		}
	}()
}

// Close disconnects all clients and stops the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	for c := range s.clients {
		_ = c.close()
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	if s.httpSrv != nil {
		return s.httpSrv.Close()
	}
	return nil
}

// ClientCount reports the number of connected frontends.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Secret != "" && r.URL.Query().Get("secret") != s.cfg.Secret {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn, s.logger)

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go c.writeLoop()
	go s.readLoop(c)

	s.logger.Info("Client connected", "remote", r.RemoteAddr)
}

// readLoop reads command envelopes from one client and dispatches them.
// Each command receives an ack carrying any handler error.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		_ = c.close()
	}()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				s.logger.Info("Client disconnected", "error", err)
			}
			return
		}

		var env streaming.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			s.logger.Debug("Malformed envelope received", "raw", string(message))
			continue
		}

		_, err = s.dispatcher.Dispatch(dispatcher.Event{
			Command:   env.Type,
			Payload:   env.Payload,
			Timestamp: time.Now(),
		})

		ack := streaming.AckMessage{Type: "ack", For: env.Type}
		if err != nil {
			ack.Error = err.Error()
		}
		if data, mErr := json.Marshal(ack); mErr == nil {
			c.send(data)
		}
	}
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// broadcast sends an envelope to every connected client (fire-and-forget).
func (s *Server) broadcast(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		c.send(data)
	}
	return nil
}

// BroadcastStep fans out one tick's snapshot.
func (s *Server) BroadcastStep(step core.Step) error {
	return s.broadcast(streaming.TypeStepUpdate, streaming.StepUpdatePayload{Step: step})
}

// BroadcastLogEntries fans out the log entries a tick emitted.
func (s *Server) BroadcastLogEntries(entries []core.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.broadcast(streaming.TypeLogEntries, streaming.LogEntriesPayload{Entries: entries})
}
