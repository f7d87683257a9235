package domain

type CommandType string

const (
	CommandRegister    CommandType = "register"
	CommandJoinRoom    CommandType = "joinRoom"
	CommandJoinPrivate CommandType = "joinPrivate"
	CommandLeave       CommandType = "leave"
	CommandMessage     CommandType = "message"
	CommandTyping      CommandType = "typing"
	CommandStopTyping  CommandType = "stopTyping"
)

// Command is an inbound client intent, decoded and validated at the boundary.
type Command interface {
	Type() CommandType
}

type RegisterCommand struct {
	Name string `json:"username" validate:"displayname"`
}

func (RegisterCommand) Type() CommandType { return CommandRegister }

// JoinRoomCommand may carry a name, in which case it also registers it.
type JoinRoomCommand struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	Name   string `json:"username" validate:"omitempty,displayname"`
}

func (JoinRoomCommand) Type() CommandType { return CommandJoinRoom }

type JoinPrivateCommand struct {
	Other string `json:"other" validate:"displayname"`
}

func (JoinPrivateCommand) Type() CommandType { return CommandJoinPrivate }

type LeaveCommand struct{}

func (LeaveCommand) Type() CommandType { return CommandLeave }

// SendMessageCommand targets Room, or To when IsPrivate is set.
// Text is checked by the router, which owns the content rules.
type SendMessageCommand struct {
	IsPrivate bool   `json:"isPrivate"`
	Room      string `json:"room" validate:"required_unless=IsPrivate true"`
	To        string `json:"to" validate:"required_if=IsPrivate true"`
	Text      string `json:"text"`
}

func (SendMessageCommand) Type() CommandType { return CommandMessage }

type TypingCommand struct {
	IsPrivate bool   `json:"isPrivate"`
	Room      string `json:"room" validate:"required_unless=IsPrivate true"`
	To        string `json:"to" validate:"required_if=IsPrivate true"`
}

func (TypingCommand) Type() CommandType { return CommandTyping }

type StopTypingCommand struct {
	IsPrivate bool   `json:"isPrivate"`
	Room      string `json:"room" validate:"required_unless=IsPrivate true"`
	To        string `json:"to" validate:"required_if=IsPrivate true"`
}

func (StopTypingCommand) Type() CommandType { return CommandStopTyping }
