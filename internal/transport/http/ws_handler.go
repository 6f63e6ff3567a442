package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/utils"
)

// Hub is the part of core.Hub the transport depends on.
type Hub interface {
	RegisterClient(c *core.Client)
	UnregisterClient(c *core.Client)
	Submit(ctx context.Context, c *core.Client, cmd core.Command) error
	Rooms() []core.RoomInfo
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub     Hub
	log     *zerolog.Logger
	accept  *websocket.AcceptOptions
	readMax int64
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	opts := &websocket.AcceptOptions{OriginPatterns: cfg.AllowedOrigins}
	if len(cfg.AllowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	}
	return &WSHandler{hub: hub, log: logger, accept: opts, readMax: cfg.MaxMessageBytes}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.readMax > 0 {
		conn.SetReadLimit(h.readMax)
	}

	client := core.NewClient(utils.NewID(), r.RemoteAddr)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
	case errors.Is(err, core.ErrClientClosed), errors.Is(err, core.ErrHubStopped):
		status = websocket.StatusGoingAway
		reason = "server shutting down"
	default:
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			if status == websocket.StatusMessageTooBig {
				reason = "message too big"
			} else {
				status = websocket.StatusInternalError
				reason = "internal error"
			}
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("read ws inbound")
			return err
		}

		if err := h.hub.Submit(ctx, client, inboundToCommand(data)); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		event, err := client.Next(ctx)
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
			h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
			return err
		}
	}
}
