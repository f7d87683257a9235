package domain

import (
	"chat-hub/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDisplayName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateDisplayName("alice"))
	req.NoError(ValidateDisplayName("  Renée  "))
	req.ErrorIs(ValidateDisplayName("   "), errors.ErrEmptyName)
	req.ErrorIs(ValidateDisplayName("bad\nname"), errors.ErrInvalidName)
	req.ErrorIs(ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLength+1)), errors.ErrInvalidName)
}

func TestValidate_Commands(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"register ok", RegisterCommand{Name: "alice"}, false},
		{"register empty", RegisterCommand{Name: ""}, true},
		{"join room with name", JoinRoomCommand{RoomID: "general", Name: "alice"}, false},
		{"join room without name", JoinRoomCommand{RoomID: "general"}, false},
		{"join room without id", JoinRoomCommand{Name: "alice"}, true},
		{"join private", JoinPrivateCommand{Other: "bob"}, false},
		{"join private empty", JoinPrivateCommand{}, true},
		{"room message", SendMessageCommand{Room: "general", Text: "hi"}, false},
		{"room message without room", SendMessageCommand{Text: "hi"}, true},
		{"private message", SendMessageCommand{IsPrivate: true, To: "bob", Text: "hi"}, false},
		{"private message without recipient", SendMessageCommand{IsPrivate: true, Text: "hi"}, true},
		{"typing room", TypingCommand{Room: "general"}, false},
		{"stop typing private without recipient", StopTypingCommand{IsPrivate: true}, true},
		{"leave", LeaveCommand{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cmd)
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}
