package ws

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		expected domain.Command
		err      error
	}{
		{
			name:     "register with a bare name",
			frame:    `{"event":"register","data":"alice"}`,
			expected: domain.RegisterCommand{Name: "alice"},
		},
		{
			name:     "register with an object",
			frame:    `{"event":"register","data":{"username":"alice"}}`,
			expected: domain.RegisterCommand{Name: "alice"},
		},
		{
			name:     "join room carrying a name",
			frame:    `{"event":"joinRoom","data":{"roomId":"general","username":"bob"}}`,
			expected: domain.JoinRoomCommand{RoomID: "general", Name: "bob"},
		},
		{
			name:     "join private",
			frame:    `{"event":"joinPrivate","data":{"other":"bob"}}`,
			expected: domain.JoinPrivateCommand{Other: "bob"},
		},
		{
			name:     "leave needs no data",
			frame:    `{"event":"leave"}`,
			expected: domain.LeaveCommand{},
		},
		{
			name:     "private message",
			frame:    `{"event":"message","data":{"isPrivate":true,"to":"bob","text":"hi","user":"ignored"}}`,
			expected: domain.SendMessageCommand{IsPrivate: true, To: "bob", Text: "hi"},
		},
		{
			name:     "room typing",
			frame:    `{"event":"typing","data":{"room":"general"}}`,
			expected: domain.TypingCommand{Room: "general"},
		},
		{
			name:     "stop typing",
			frame:    `{"event":"stopTyping","data":{"isPrivate":true,"to":"bob"}}`,
			expected: domain.StopTypingCommand{IsPrivate: true, To: "bob"},
		},
		{
			name:  "not json",
			frame: `hello`,
			err:   errors.ErrMalformedFrame,
		},
		{
			name:  "missing data",
			frame: `{"event":"joinRoom"}`,
			err:   errors.ErrMalformedFrame,
		},
		{
			name:  "wrong data type",
			frame: `{"event":"message","data":{"text":42}}`,
			err:   errors.ErrMalformedFrame,
		},
		{
			name:  "unknown event",
			frame: `{"event":"shout","data":{}}`,
			err:   errors.ErrUnknownEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, err := Decode([]byte(tt.frame))
			if tt.err != nil {
				req.ErrorIs(err, tt.err)
				req.Equal(errors.CodeProtocol, errors.Code(err))
				return
			}
			req.NoError(err)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestEncode(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	raw, err := Encode(event.MessageDelivered{Message: domain.Message{
		ID: id, Room: "general", User: "alice", Text: "hi", Timestamp: at,
	}})
	req.NoError(err)

	var frame struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	req.NoError(json.Unmarshal(raw, &frame))
	req.Equal("message", frame.Event)
	req.Equal(id.String(), frame.Data["id"])
	req.Equal("alice", frame.Data["user"])
	req.Equal("general", frame.Data["room"])
	req.Equal("2024-05-01T10:00:00Z", frame.Data["timestamp"])
	req.NotContains(frame.Data, "participants")

	raw, err = Encode(event.Typing{User: "bob", Target: "general", Active: false})
	req.NoError(err)
	req.JSONEq(`{"event":"stopTyping","data":{"user":"bob","target":"general","isPrivate":false}}`, string(raw))
}
