package core

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultCommandBuffer is the inbox size used when NewHub gets a non-positive buffer.
const DefaultCommandBuffer = 256

// ErrHubStopped is returned when submitting to a hub that is no longer running.
var ErrHubStopped = errors.New("hub stopped")

type op int

const (
	opCommand op = iota
	opConnect
	opDisconnect
)

type envelope struct {
	op     op
	client *Client
	cmd    Command
}

// Hub serialises every state change through a single goroutine. Transport
// code submits commands; the hub mutates the registry and queues events on
// the affected clients.
type Hub struct {
	registry *Registry
	inbox    chan envelope
	done     chan struct{}
	stopOnce sync.Once
	clients  map[*Client]struct{}
	log      *zerolog.Logger
}

// NewHub creates a hub with a fresh registry.
func NewHub(logger *zerolog.Logger, buffer int) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if buffer <= 0 {
		buffer = DefaultCommandBuffer
	}
	return &Hub{
		registry: NewRegistry(),
		inbox:    make(chan envelope, buffer),
		done:     make(chan struct{}),
		clients:  make(map[*Client]struct{}),
		log:      logger,
	}
}

// Registry exposes the hub's state for read-only inspection.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Rooms returns every room with its member count in creation order.
func (h *Hub) Rooms() []RoomInfo {
	return h.registry.RoomStats()
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run processes commands until ctx is cancelled. Connected clients are
// closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.inbox:
			h.handle(env)
		}
	}
}

// RegisterClient announces a new connection.
func (h *Hub) RegisterClient(c *Client) {
	if !h.enqueue(context.Background(), envelope{op: opConnect, client: c}) {
		c.Close()
	}
}

// UnregisterClient announces that a connection terminated.
func (h *Hub) UnregisterClient(c *Client) {
	h.enqueue(context.Background(), envelope{op: opDisconnect, client: c})
}

// Submit queues a command from c. It blocks while the inbox is full.
func (h *Hub) Submit(ctx context.Context, c *Client, cmd Command) error {
	if !h.enqueue(ctx, envelope{op: opCommand, client: c, cmd: cmd}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrHubStopped
	}
	return nil
}

func (h *Hub) enqueue(ctx context.Context, env envelope) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.inbox <- env:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		for c := range h.clients {
			c.Close()
		}
		for {
			select {
			case env := <-h.inbox:
				if env.op == opConnect {
					env.client.Close()
				}
			default:
				h.log.Info().Int("clients", len(h.clients)).Msg("hub stopped")
				return
			}
		}
	})
}

func (h *Hub) handle(env envelope) {
	switch env.op {
	case opConnect:
		h.clients[env.client] = struct{}{}
		h.log.Info().Str("client_id", env.client.ID).Str("addr", env.client.Addr).Msg("client connected")
	case opDisconnect:
		h.disconnect(env.client)
	default:
		h.dispatch(env.client, env.cmd)
	}
}

func (h *Hub) dispatch(c *Client, cmd Command) {
	switch cmd.Kind {
	case CommandRegister:
		h.register(c, cmd)
	case CommandListRooms:
		h.sendRooms(c)
	case CommandCreateRoom:
		h.createRoom(c, cmd)
	case CommandJoinRoom:
		h.joinRoom(c, cmd)
	case CommandLeaveRoom:
		h.leaveRoom(c)
	case CommandSendMessage:
		h.sendMessage(c, cmd)
	case CommandMissingAction:
		h.fail(c, missingField("action"))
	case CommandUnknown:
		h.fail(c, unknownAction(cmd.Action))
	case CommandInvalid:
		h.fail(c, ErrInvalidPayload)
	default:
		h.fail(c, unknownAction(cmd.Action))
	}
}

func (h *Hub) register(c *Client, cmd Command) {
	s, err := h.registry.Register(c, cmd.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Str("client_id", c.ID).Str("username", s.Name).Str("room", s.Room).Msg("client registered")

	c.Send(&Event{Kind: EventRegistered, Room: s.Room, User: s.Name})
	h.sendRooms(c)
	h.broadcast(s.Room, &Event{Kind: EventUserJoined, Room: s.Room, User: s.Name}, c)
}

func (h *Hub) createRoom(c *Client, cmd Command) {
	s, ok := h.registry.Lookup(c)
	if !ok {
		h.fail(c, ErrNotRegistered)
		return
	}
	if err := h.registry.CreateRoom(cmd.Room); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Str("room", cmd.Room).Str("username", s.Name).Msg("room created")
	h.sendRooms(c)
}

func (h *Hub) joinRoom(c *Client, cmd Command) {
	old, s, err := h.registry.Join(c, cmd.Room)
	if err != nil {
		h.fail(c, err)
		return
	}
	if old != NoRoom {
		h.broadcast(old, &Event{Kind: EventUserLeft, Room: old, User: s.Name}, c)
	}
	h.log.Info().Str("username", s.Name).Str("room", s.Room).Str("from", old).Msg("joined room")

	c.Send(&Event{Kind: EventRoomChanged, Room: s.Room})
	h.broadcast(s.Room, &Event{Kind: EventUserJoined, Room: s.Room, User: s.Name}, c)
}

func (h *Hub) leaveRoom(c *Client) {
	old, s, err := h.registry.Leave(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if old == NoRoom {
		return
	}
	h.log.Info().Str("username", s.Name).Str("room", old).Msg("left room")

	c.Send(&Event{Kind: EventLeftRoom, Room: old})
	h.broadcast(old, &Event{Kind: EventUserLeft, Room: old, User: s.Name}, c)
}

func (h *Hub) sendMessage(c *Client, cmd Command) {
	s, ok := h.registry.Lookup(c)
	if !ok {
		h.fail(c, ErrNotRegistered)
		return
	}
	if cmd.Text == "" {
		h.fail(c, ErrEmptyText)
		return
	}
	if !s.InRoom() {
		h.fail(c, ErrNotInRoom)
		return
	}

	msg := Message{Room: s.Room, From: s.Name, Text: cmd.Text}
	h.log.Debug().Str("username", s.Name).Str("room", s.Room).Str("text", cmd.Text).Msg("room message")
	// The sender is not excluded and receives its own message back.
	h.broadcast(s.Room, &Event{Kind: EventRoomMessage, Room: s.Room, User: s.Name, Message: msg}, nil)
}

func (h *Hub) disconnect(c *Client) {
	delete(h.clients, c)
	defer c.Close()

	s, ok := h.registry.Disconnect(c)
	if !ok {
		h.log.Info().Str("client_id", c.ID).Msg("unregistered client disconnected")
		return
	}
	if s.InRoom() {
		h.broadcast(s.Room, &Event{Kind: EventUserLeft, Room: s.Room, User: s.Name}, nil)
	}
	h.log.Info().Str("client_id", c.ID).Str("username", s.Name).Msg("client disconnected")
}

// broadcast delivers ev to a snapshot of the room's members. Unknown rooms
// and closed recipients are skipped.
func (h *Hub) broadcast(room string, ev *Event, exclude *Client) {
	members := h.registry.MembersOf(room)
	if members == nil {
		return
	}
	for _, m := range lo.Without(members, exclude) {
		if !m.Send(ev) {
			h.log.Debug().Str("client_id", m.ID).Str("room", room).Msg("drop event for closed client")
		}
	}
}

func (h *Hub) sendRooms(c *Client) {
	c.Send(&Event{Kind: EventRoomsList, Rooms: h.registry.ListRooms()})
}

func (h *Hub) fail(c *Client, err error) {
	var ce *CoreError
	if !errors.As(err, &ce) {
		ce = coreError(ErrCodeInvalidPayload, err.Error())
	}
	h.log.Debug().Str("client_id", c.ID).Str("code", ce.Code).Msg(ce.Message)
	c.Send(errorEvent(ce))
}
