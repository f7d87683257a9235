package ws

import (
	"bytes"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"encoding/json"
	"fmt"
)

// inboundFrame is what clients send: {"event": "joinRoom", "data": {...}}.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Event event.Name `json:"event"`
	Data  any        `json:"data"`
}

// Encode renders a notification as a text frame.
func Encode(n event.Notification) ([]byte, error) {
	return json.Marshal(outboundFrame{Event: n.EventName(), Data: n})
}

// Decode turns a text frame into a typed command. It does not validate field content.
func Decode(raw []byte) (domain.Command, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}

	switch domain.CommandType(frame.Event) {
	case domain.CommandRegister:
		return decodeRegister(frame.Data)
	case domain.CommandJoinRoom:
		return decodeInto[domain.JoinRoomCommand](frame.Data)
	case domain.CommandJoinPrivate:
		return decodeInto[domain.JoinPrivateCommand](frame.Data)
	case domain.CommandLeave:
		return domain.LeaveCommand{}, nil
	case domain.CommandMessage:
		return decodeInto[domain.SendMessageCommand](frame.Data)
	case domain.CommandTyping:
		return decodeInto[domain.TypingCommand](frame.Data)
	case domain.CommandStopTyping:
		return decodeInto[domain.StopTypingCommand](frame.Data)
	case "":
		return nil, fmt.Errorf("%w: missing event name", errors.ErrMalformedFrame)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, frame.Event)
	}
}

// decodeRegister accepts the bare name as well as {"username": name}.
func decodeRegister(data json.RawMessage) (domain.Command, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return domain.RegisterCommand{Name: name}, nil
	}
	return decodeInto[domain.RegisterCommand](data)
}

func decodeInto[C domain.Command](data json.RawMessage) (domain.Command, error) {
	var cmd C
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: missing data", errors.ErrMalformedFrame)
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}
	return cmd, nil
}
