package ws

import (
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one socket. The read goroutine handles commands in arrival order,
// the write goroutine drains send, so a slow browser only delays itself.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	config Config
	log    *slog.Logger
}

func newClient(id string, conn *websocket.Conn, config Config, log *slog.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, config.ConnectionBufferSize),
		done:   make(chan struct{}),
		config: config,
		log:    log.With("conn_id", id),
	}
}

// enqueue never blocks: a full buffer drops the frame.
func (c *Client) enqueue(frame []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn("Send buffer full, dropping frame")
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(ctx context.Context, handler SessionHandler) {
	defer c.close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Connection lost", "error", err)
			}
			return
		}

		cmd, err := Decode(raw)
		if err == nil {
			err = handler.Handle(ctx, c.id, cmd)
		}
		if err != nil {
			c.fail(err)
		}
	}
}

// fail reports err to this connection only.
func (c *Client) fail(err error) {
	code := errors.Code(err)
	if code == errors.CodeInternal {
		c.log.Error("Command failed", "error", err)
	} else {
		c.log.Debug("Command rejected", "code", code, "error", err)
	}
	frame, encodeErr := Encode(event.Error{Code: code, Message: err.Error()})
	if encodeErr != nil {
		return
	}
	c.enqueue(frame)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
