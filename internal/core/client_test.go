package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientDeliversInOrder(t *testing.T) {
	c := NewClient("a", "")
	for i := range 100 {
		require.True(t, c.Send(&Event{Kind: EventRoomMessage, Message: Message{Text: string(rune('a' + i%26))}}))
	}

	ctx := context.Background()
	for i := range 100 {
		ev, err := c.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, string(rune('a'+i%26)), ev.Message.Text)
	}
}

func TestClientNextWaitsForSend(t *testing.T) {
	c := NewClient("a", "")

	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Send(&Event{Kind: EventLeftRoom})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := c.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, EventLeftRoom, ev.Kind)
}

func TestClientCloseDrainsThenFails(t *testing.T) {
	c := NewClient("a", "")
	require.True(t, c.Send(&Event{Kind: EventRoomsList}))

	c.Close()
	c.Close()
	require.False(t, c.Send(&Event{Kind: EventRoomsList}))

	ev, err := c.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, EventRoomsList, ev.Kind)

	_, err = c.Next(context.Background())
	require.ErrorIs(t, err, ErrClientClosed)
}

func TestClientNextHonoursContext(t *testing.T) {
	c := NewClient("a", "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
