package domain

type TargetKind int

const (
	TargetUnknown TargetKind = iota
	TargetRoom
	TargetPrivate
)

func (k TargetKind) String() string {
	switch k {
	case TargetRoom:
		return "room"
	case TargetPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// Target is where a connection is joined, where a message goes and where
// typing happens: either a room id or a conversation key.
type Target struct {
	Kind TargetKind
	ID   string
}

func RoomTarget(roomID string) Target {
	return Target{Kind: TargetRoom, ID: roomID}
}

func PrivateTarget(key ConversationKey) Target {
	return Target{Kind: TargetPrivate, ID: string(key)}
}

func (t Target) IsPrivate() bool { return t.Kind == TargetPrivate }

func (t Target) IsZero() bool { return t.Kind == TargetUnknown && t.ID == "" }

// Group is the transport group name mirroring the target's membership.
// The kind prefix keeps room ids and conversation keys apart.
func (t Target) Group() string {
	return t.Kind.String() + "/" + t.ID
}

func (t Target) String() string {
	return t.Group()
}
