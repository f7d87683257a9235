package ws

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// echoHandler acknowledges every register and records the session life.
type echoHandler struct {
	server       *Server
	connected    chan string
	disconnected chan string
	commands     chan domain.Command
}

func newEchoHandler(server *Server) *echoHandler {
	return &echoHandler{
		server:       server,
		connected:    make(chan string, 10),
		disconnected: make(chan string, 10),
		commands:     make(chan domain.Command, 10),
	}
}

func (h *echoHandler) Connect(connID string) { h.connected <- connID }

func (h *echoHandler) Handle(_ context.Context, connID string, cmd domain.Command) error {
	h.commands <- cmd
	if register, ok := cmd.(domain.RegisterCommand); ok {
		if register.Name == "" {
			return errors.ErrEmptyName
		}
		return h.server.SendTo(connID, event.Registered{Name: register.Name})
	}
	return nil
}

func (h *echoHandler) Disconnect(connID string) { h.disconnected <- connID }

type received struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func startServer(t *testing.T) (*Server, *echoHandler, string) {
	server := NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), Config{PongTimeout: time.Second})
	handler := newEchoHandler(server)
	server.Attach(handler)
	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)
	return server, handler, "ws" + strings.TrimPrefix(httpServer.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) received {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame received
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}

func TestServer_Session(t *testing.T) {
	req := require.New(t)
	server, handler, url := startServer(t)

	// Given a connected client
	conn := dial(t, url)
	connID := waitFor(t, handler.connected)
	req.NotEmpty(connID)

	// When it registers
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"register","data":"alice"}`)))

	// Then the command reaches the engine and the ack comes back
	req.Equal(domain.RegisterCommand{Name: "alice"}, waitFor(t, handler.commands))
	frame := readFrame(t, conn)
	req.Equal("registered", frame.Event)
	req.JSONEq(`{"username":"alice"}`, string(frame.Data))

	// When it sends garbage, it gets a protocol error and stays connected
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"shout"}`)))
	frame = readFrame(t, conn)
	req.Equal("error", frame.Event)
	var failure event.Error
	req.NoError(json.Unmarshal(frame.Data, &failure))
	req.Equal(errors.CodeProtocol, failure.Code)

	// When the engine rejects a command, the code is a validation one
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"register","data":""}`)))
	waitFor(t, handler.commands)
	frame = readFrame(t, conn)
	req.NoError(json.Unmarshal(frame.Data, &failure))
	req.Equal(errors.CodeValidation, failure.Code)

	// When the client leaves, the engine is told
	req.NoError(conn.Close())
	req.Equal(connID, waitFor(t, handler.disconnected))
	req.Eventually(func() bool { return server.Connections() == 0 }, time.Second, 5*time.Millisecond)
	req.Error(server.SendTo(connID, event.Registered{Name: "alice"}))
}

func TestServer_Groups(t *testing.T) {
	req := require.New(t)
	server, handler, url := startServer(t)

	alice := dial(t, url)
	aliceID := waitFor(t, handler.connected)
	bob := dial(t, url)
	bobID := waitFor(t, handler.connected)
	carol := dial(t, url)
	carolID := waitFor(t, handler.connected)

	// Given alice and bob in general
	server.Join("room/general", aliceID)
	server.Join("room/general", bobID)

	// When alice's typing is broadcast without her
	server.Broadcast("room/general", event.Typing{User: "alice", Target: "general", Active: true}, aliceID)
	// And everyone is told about users
	server.BroadcastAll(event.NewGlobalUsers([]string{"alice", "bob", "carol"}))

	// Then bob sees typing first, alice and carol only the user list
	req.Equal("typing", readFrame(t, bob).Event)
	req.Equal("globalUsers", readFrame(t, bob).Event)
	req.Equal("globalUsers", readFrame(t, alice).Event)
	req.Equal("globalUsers", readFrame(t, carol).Event)

	// When bob leaves the group
	server.Leave("room/general", bobID)
	server.Broadcast("room/general", event.NewRoomUsers(domain.RoomTarget("general"), []string{"alice"}))
	req.NoError(server.SendTo(carolID, event.Registered{Name: "carol"}))

	// Then only alice gets the room update
	req.Equal("roomUsers", readFrame(t, alice).Event)
	req.Equal("registered", readFrame(t, carol).Event)
	req.NoError(bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err := bob.ReadMessage()
	req.Error(err)
}

func TestServer_CheckOrigin(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	open := NewServer(log, Config{})
	restricted := NewServer(log, Config{AllowedOrigins: []string{"https://chat.example.com"}})

	request := httptest.NewRequest("GET", "/ws", nil)
	req.True(open.checkOrigin(request))
	req.True(restricted.checkOrigin(request))

	request.Header.Set("Origin", "https://evil.example.com")
	req.True(open.checkOrigin(request))
	req.False(restricted.checkOrigin(request))

	request.Header.Set("Origin", "https://chat.example.com")
	req.True(restricted.checkOrigin(request))
}
