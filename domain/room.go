package domain

// DefaultRoomID is the room every directory starts with.
const DefaultRoomID = "general"

// Room is a named routing target that outlives any connection.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func DefaultRoom() Room {
	return Room{ID: DefaultRoomID, Name: "General"}
}
