package proto

// Inbound is a request coming from the client. Which fields matter depends
// on Action.
type Inbound struct {
	Action   string `json:"action"`
	Username string `json:"username,omitempty"`
	Room     string `json:"room,omitempty"`
	Text     string `json:"text,omitempty"`
}

const (
	ActionRegister    = "register"
	ActionListRooms   = "list_rooms"
	ActionCreateRoom  = "create_room"
	ActionJoinRoom    = "join_room"
	ActionLeaveRoom   = "leave_room"
	ActionSendMessage = "send_message"

	OutboundTypeRoomsList = "rooms_list"
	OutboundTypeSystem    = "system"
	OutboundTypeMessage   = "message"
	OutboundTypeError     = "error"

	EventRegistered  = "registered"
	EventRoomChanged = "room_changed"
	EventLeftRoom    = "left_room"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
)

// Outbound is a flat object sent to the client, selected by Type.
//
//	rooms_list: rooms
//	system:     event, room, username (user_joined, user_left, registered)
//	message:    room, from, text
//	error:      code, message
type Outbound struct {
	Type     string   `json:"type"`
	Event    string   `json:"event,omitempty"`
	Rooms    []string `json:"rooms,omitempty"`
	Room     string   `json:"room,omitempty"`
	Username string   `json:"username,omitempty"`
	From     string   `json:"from,omitempty"`
	Text     string   `json:"text,omitempty"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message,omitempty"`
}
