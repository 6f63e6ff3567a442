package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, 0)
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id, "test")
	hub.RegisterClient(c)
	return c
}

func submit(t *testing.T, hub *Hub, c *Client, cmd Command) {
	t.Helper()
	require.NoError(t, hub.Submit(context.Background(), c, cmd))
}

// registerAs registers c and consumes the registered and rooms_list replies.
func registerAs(t *testing.T, hub *Hub, c *Client, name string) {
	t.Helper()

	submit(t, hub, c, Command{Kind: CommandRegister, Username: name})
	mustEvent(t, c, EventRegistered)
	mustEvent(t, c, EventRoomsList)
}

func nextEvent(t *testing.T, c *Client) *Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev, err := c.Next(ctx)
	require.NoError(t, err, "client %s: expected an event", c.ID)
	return ev
}

func mustEvent(t *testing.T, c *Client, kind EventKind) *Event {
	t.Helper()

	ev := nextEvent(t, c)
	require.Equal(t, kind, ev.Kind, "unexpected event: %+v", ev)
	return ev
}

func mustError(t *testing.T, c *Client, code string) *Event {
	t.Helper()

	ev := mustEvent(t, c, EventError)
	require.NotNil(t, ev.Error)
	require.Equal(t, code, ev.Error.Code, "unexpected error: %s", ev.Error.Message)
	return ev
}

// mustSilence asserts that c has nothing queued once the hub has processed
// everything submitted so far. A list_rooms round trip acts as the barrier.
func mustSilence(t *testing.T, hub *Hub, c *Client) {
	t.Helper()

	submit(t, hub, c, Command{Kind: CommandListRooms})
	ev := nextEvent(t, c)
	require.Equal(t, EventRoomsList, ev.Kind, "expected no pending events, got %+v", ev)
}
