package core

import (
	"context"
	"errors"
	"sync"
)

// ErrClientClosed is returned by Next once the client is closed and its
// outbox has been drained.
var ErrClientClosed = errors.New("client closed")

// Client is one live connection as seen by the core layer.
// Events queued with Send are delivered by the transport in FIFO order.
type Client struct {
	ID   string
	Addr string

	mu     sync.Mutex
	queue  []*Event
	closed bool
	ready  chan struct{}
	done   chan struct{}
}

// NewClient constructs a client with an empty outbox.
func NewClient(id, addr string) *Client {
	return &Client{
		ID:    id,
		Addr:  addr,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Send queues an event for delivery. It never blocks and reports false if
// the client has already been closed.
func (c *Client) Send(ev *Event) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an event is queued, the client is closed or ctx is done.
// Events queued before Close are still returned.
func (c *Client) Next(ctx context.Context) (*Event, error) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			ev := c.queue[0]
			c.queue[0] = nil
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return ev, nil
		}
		closed := c.closed
		c.mu.Unlock()

		if closed {
			return nil, ErrClientClosed
		}

		select {
		case <-c.ready:
		case <-c.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close stops accepting new events. It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// Done is closed when the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
