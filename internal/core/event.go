package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomsList delivers the ordered list of room names.
	EventRoomsList EventKind = iota
	// EventRegistered confirms a successful registration.
	EventRegistered
	// EventRoomChanged confirms the client joined a room.
	EventRoomChanged
	// EventLeftRoom confirms the client left its room.
	EventLeftRoom
	// EventUserJoined notifies room members about a user joining.
	EventUserJoined
	// EventUserLeft notifies room members about a user leaving.
	EventUserLeft
	// EventRoomMessage notifies room members about a chat message.
	EventRoomMessage
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Events may be shared between recipients and must not be mutated after
// they are handed to Send.
type Event struct {
	Kind    EventKind
	Room    string
	User    string
	Rooms   []string
	Message Message
	Error   *CoreError
}

func errorEvent(err *CoreError) *Event {
	return &Event{Kind: EventError, Error: err}
}
