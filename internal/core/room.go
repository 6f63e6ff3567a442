package core

import "github.com/samber/lo"

// DefaultRoom exists from startup and is never removed.
const DefaultRoom = "general"

// Room groups clients subscribed to the same channel.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

// RoomInfo is a read-only view of a room.
type RoomInfo struct {
	Name    string
	Members int
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Members returns a copy of the member set.
func (r *Room) Members() []*Client {
	return lo.Keys(r.clients)
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.clients)
}
