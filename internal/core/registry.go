package core

import (
	"sync"

	"github.com/samber/lo"
)

// Registry owns sessions and rooms behind a single lock. Sessions and room
// membership reference each other, so every mutation that touches both
// happens under the same critical section.
type Registry struct {
	mu       sync.RWMutex
	sessions map[*Client]*Session
	names    map[string]*Client
	rooms    map[string]*Room
	order    []string
}

// NewRegistry builds a registry holding only the default room.
func NewRegistry() *Registry {
	r := &Registry{
		sessions: make(map[*Client]*Session),
		names:    make(map[string]*Client),
		rooms:    make(map[string]*Room),
	}
	r.rooms[DefaultRoom] = NewRoom(DefaultRoom)
	r.order = append(r.order, DefaultRoom)
	return r
}

// CreateRoom adds an empty room.
func (r *Registry) CreateRoom(name string) error {
	if name == "" {
		return missingField("room")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[name]; exists {
		return ErrRoomExists
	}
	r.rooms[name] = NewRoom(name)
	r.order = append(r.order, name)
	return nil
}

// RoomExists reports whether a room with the given name exists.
func (r *Registry) RoomExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[name]
	return ok
}

// ListRooms returns room names in creation order.
func (r *Registry) ListRooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// RoomStats returns every room with its member count, in creation order.
func (r *Registry) RoomStats() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.order, func(name string, _ int) RoomInfo {
		return RoomInfo{Name: name, Members: r.rooms[name].Len()}
	})
}

// AddMember puts c into the named room. Adding an existing member is a no-op.
func (r *Registry) AddMember(name string, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	room.AddClient(c)
	return nil
}

// RemoveMember takes c out of the named room. Missing rooms and members are ignored.
func (r *Registry) RemoveMember(name string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeMemberLocked(name, c)
}

func (r *Registry) removeMemberLocked(name string, c *Client) bool {
	room, ok := r.rooms[name]
	if !ok {
		return false
	}
	return room.RemoveClient(c)
}

// MembersOf returns a snapshot of the room's members, or nil for unknown rooms.
func (r *Registry) MembersOf(name string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	return room.Members()
}

// Join moves c from its current room into the named one and returns the room
// it was in before (NoRoom if none) along with the updated session.
func (r *Registry) Join(c *Client, name string) (string, Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[c]
	if !ok {
		return NoRoom, Session{}, ErrNotRegistered
	}
	if name == "" {
		return NoRoom, *s, missingField("room")
	}
	target, ok := r.rooms[name]
	if !ok {
		return NoRoom, *s, ErrRoomNotFound
	}

	old := NoRoom
	if s.InRoom() && r.removeMemberLocked(s.Room, c) {
		old = s.Room
	}
	target.AddClient(c)
	s.Room = name
	return old, *s, nil
}

// Leave takes c out of its current room and returns the room it left.
// A session that is already roomless yields NoRoom and no error.
func (r *Registry) Leave(c *Client) (string, Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[c]
	if !ok {
		return NoRoom, Session{}, ErrNotRegistered
	}
	if !s.InRoom() {
		return NoRoom, *s, nil
	}

	old := s.Room
	r.removeMemberLocked(old, c)
	s.Room = NoRoom
	return old, *s, nil
}

// Disconnect removes c's session and its room membership in one step.
// The returned session still carries the room c was in.
func (r *Registry) Disconnect(c *Client) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.deregisterLocked(c)
	if !ok {
		return Session{}, false
	}
	if s.InRoom() && !r.removeMemberLocked(s.Room, c) {
		s.Room = NoRoom
	}
	return s, true
}
