// Package ws carries the chat protocol over WebSocket with gorilla/websocket.
// The Server is the transport the engine broadcasts through: it owns the live
// connections and the named groups mirroring room and conversation membership.
package ws

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	DefaultConnectionBufferSize = 64
	DefaultWriteTimeout         = 10 * time.Second
	DefaultPongTimeout          = 60 * time.Second
	maxFrameSize                = 64 * 1024
)

// SessionHandler receives the life of every connection, in order.
type SessionHandler interface {
	Connect(connID string)
	Handle(ctx context.Context, connID string, cmd domain.Command) error
	Disconnect(connID string)
}

type Config struct {
	ConnectionBufferSize int
	WriteTimeout         time.Duration
	PongTimeout          time.Duration
	AllowedOrigins       []string
}

type Server struct {
	mu       sync.RWMutex
	log      *slog.Logger
	config   Config
	upgrader websocket.Upgrader
	clients  map[string]*Client
	groups   map[string]map[string]*Client
	handler  SessionHandler
}

func NewServer(log *slog.Logger, config Config) *Server {
	if config.ConnectionBufferSize <= 0 {
		config.ConnectionBufferSize = DefaultConnectionBufferSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	if config.PongTimeout <= 0 {
		config.PongTimeout = DefaultPongTimeout
	}
	s := &Server{
		log:     log,
		config:  config,
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Attach sets the engine receiving the sessions. It must be called before serving.
func (s *Server) Attach(handler SessionHandler) {
	s.handler = handler
}

// ServeHTTP upgrades the request and runs the session until the client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, s.config, s.log)
	s.add(client)
	s.handler.Connect(client.id)

	go client.writePump()
	client.readPump(r.Context(), s.handler)

	s.remove(client)
	s.handler.Disconnect(client.id)
}

func (s *Server) SendTo(connID string, n event.Notification) error {
	frame, err := Encode(n)
	if err != nil {
		return err
	}
	s.mu.RLock()
	client, ok := s.clients[connID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("connection %s: %w", connID, errors.ErrSessionClosed)
	}
	client.enqueue(frame)
	return nil
}

func (s *Server) Broadcast(group string, n event.Notification, except ...string) {
	frame, err := Encode(n)
	if err != nil {
		s.log.Error("Notification not encoded", "event", n.EventName(), "error", err)
		return
	}
	s.mu.RLock()
	members := make([]*Client, 0, len(s.groups[group]))
	for id, client := range s.groups[group] {
		if !slices.Contains(except, id) {
			members = append(members, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range members {
		client.enqueue(frame)
	}
}

func (s *Server) BroadcastAll(n event.Notification) {
	frame, err := Encode(n)
	if err != nil {
		s.log.Error("Notification not encoded", "event", n.EventName(), "error", err)
		return
	}
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		client.enqueue(frame)
	}
}

func (s *Server) Join(group, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[connID]
	if !ok {
		return
	}
	if s.groups[group] == nil {
		s.groups[group] = make(map[string]*Client)
	}
	s.groups[group][connID] = client
}

func (s *Server) Leave(group, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked(group, connID)
}

// Connections counts the open sockets.
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes every socket. Each session then runs its normal disconnect.
func (s *Server) Close() {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		client.close()
	}
}

func (s *Server) add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.id] = client
}

func (s *Server) remove(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client.id)
	for group := range s.groups {
		s.leaveLocked(group, client.id)
	}
}

func (s *Server) leaveLocked(group, connID string) {
	members, ok := s.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(s.groups, group)
	}
}

// checkOrigin lets non-browser clients in and, when origins are configured, only those browsers.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.config.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.config.AllowedOrigins, "*") || slices.Contains(s.config.AllowedOrigins, origin)
}
