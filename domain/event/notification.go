package event

import "chat-hub/domain"

type Name string

const (
	RegisteredName        Name = "registered"
	HistoryName           Name = "history"
	PrivateHistoryName    Name = "privateHistory"
	MessageName           Name = "message"
	PrivateMessageName    Name = "privateMessage"
	RoomUsersName         Name = "roomUsers"
	GlobalUsersName       Name = "globalUsers"
	TypingName            Name = "typing"
	StopTypingName        Name = "stopTyping"
	TypingPrivateName     Name = "typingPrivate"
	StopTypingPrivateName Name = "stopTypingPrivate"
	ErrorName             Name = "error"
)

// Notification is anything the transport can push to a connection.
type Notification interface {
	EventName() Name
}

type Registered struct {
	Name string `json:"username"`
}

func (Registered) EventName() Name { return RegisteredName }

type History struct {
	Room     string           `json:"room"`
	Messages []domain.Message `json:"messages"`
}

func (History) EventName() Name { return HistoryName }

type PrivateHistory struct {
	With     string           `json:"with"`
	Messages []domain.Message `json:"messages"`
}

func (PrivateHistory) EventName() Name { return PrivateHistoryName }

// MessageDelivered carries a stored message to the members of its target.
type MessageDelivered struct {
	domain.Message
}

func (m MessageDelivered) EventName() Name {
	if m.IsPrivate {
		return PrivateMessageName
	}
	return MessageName
}

// RoomUsers is the member snapshot of a room or a private conversation.
type RoomUsers struct {
	Target    string   `json:"target"`
	IsPrivate bool     `json:"isPrivate"`
	Users     []string `json:"users"`
}

func (RoomUsers) EventName() Name { return RoomUsersName }

func NewRoomUsers(target domain.Target, users []string) RoomUsers {
	if users == nil {
		users = []string{}
	}
	return RoomUsers{Target: target.ID, IsPrivate: target.IsPrivate(), Users: users}
}

type GlobalUsers struct {
	Users []string `json:"users"`
}

func (GlobalUsers) EventName() Name { return GlobalUsersName }

func NewGlobalUsers(users []string) GlobalUsers {
	if users == nil {
		users = []string{}
	}
	return GlobalUsers{Users: users}
}

// Typing reports a start or a stop for one name on one target.
type Typing struct {
	User      string `json:"user"`
	Target    string `json:"target"`
	IsPrivate bool   `json:"isPrivate"`
	Active    bool   `json:"-"`
}

func (t Typing) EventName() Name {
	switch {
	case t.IsPrivate && t.Active:
		return TypingPrivateName
	case t.IsPrivate:
		return StopTypingPrivateName
	case t.Active:
		return TypingName
	default:
		return StopTypingName
	}
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Error) EventName() Name { return ErrorName }
