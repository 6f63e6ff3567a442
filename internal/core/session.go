package core

// NoRoom is the current room of a session that left its room.
const NoRoom = ""

// Session is the registered identity bound to one live client.
type Session struct {
	Name string
	Room string
}

// InRoom reports whether the session currently belongs to a room.
func (s Session) InRoom() bool {
	return s.Room != NoRoom
}

// Register binds name to c and places c in the default room.
func (r *Registry) Register(c *Client, name string) (Session, error) {
	if name == "" {
		return Session{}, missingField("username")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[c]; ok {
		return Session{}, ErrAlreadyRegistered
	}
	if _, taken := r.names[name]; taken {
		return Session{}, ErrNameTaken
	}

	s := &Session{Name: name, Room: DefaultRoom}
	r.sessions[c] = s
	r.names[name] = c
	r.rooms[DefaultRoom].AddClient(c)
	return *s, nil
}

// Lookup returns a copy of the session bound to c.
func (r *Registry) Lookup(c *Client) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[c]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Deregister removes and returns the session bound to c.
// Room membership is left untouched.
func (r *Registry) Deregister(c *Client) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deregisterLocked(c)
}

func (r *Registry) deregisterLocked(c *Client) (Session, bool) {
	s, ok := r.sessions[c]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, c)
	delete(r.names, s.Name)
	return *s, true
}

// Sessions returns the number of registered clients.
func (r *Registry) Sessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
