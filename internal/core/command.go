package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandInvalid is produced when an inbound payload cannot be parsed.
	CommandInvalid CommandKind = iota
	// CommandMissingAction is produced for a payload without an action.
	CommandMissingAction
	// CommandUnknown carries an action the server does not recognise.
	CommandUnknown
	// CommandRegister binds a display name to the connection.
	CommandRegister
	// CommandListRooms asks for the ordered room list.
	CommandListRooms
	// CommandCreateRoom creates an empty room.
	CommandCreateRoom
	// CommandJoinRoom moves the client into a room.
	CommandJoinRoom
	// CommandLeaveRoom takes the client out of its current room.
	CommandLeaveRoom
	// CommandSendMessage delivers text to the client's current room.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Action   string
	Username string
	Room     string
	Text     string
}
