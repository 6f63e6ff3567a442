package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	return startTestServerWithConfig(t, &cfg)
}

func startTestServerWithConfig(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	hub := core.NewHub(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	disabledLogger := zerolog.New(nil)
	cfg.Addr = ":0"

	server := NewServer(hub, cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, in proto.Inbound) {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, in))
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Outbound {
	t.Helper()

	var out proto.Outbound
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	return out
}

func register(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) {
	t.Helper()

	send(t, ctx, conn, proto.Inbound{Action: proto.ActionRegister, Username: name})
	reg := read(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeSystem, reg.Type)
	require.Equal(t, proto.EventRegistered, reg.Event)
	require.Equal(t, name, reg.Username)
	require.Equal(t, proto.OutboundTypeRoomsList, read(t, ctx, conn).Type)
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
}

func TestWebSocketScenario(t *testing.T) {
	ts := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dial(t, ctx, ts)
	connB := dial(t, ctx, ts)
	connW := dial(t, ctx, ts)

	send(t, ctx, connA, proto.Inbound{Action: proto.ActionRegister, Username: "alice"})
	require.Equal(t, proto.Outbound{
		Type:     proto.OutboundTypeSystem,
		Event:    proto.EventRegistered,
		Room:     core.DefaultRoom,
		Username: "alice",
	}, read(t, ctx, connA))
	require.Equal(t, proto.Outbound{Type: proto.OutboundTypeRoomsList, Rooms: []string{"general"}}, read(t, ctx, connA))

	register(t, ctx, connW, "walt")
	joined := read(t, ctx, connA)
	require.Equal(t, proto.EventUserJoined, joined.Event)
	require.Equal(t, "walt", joined.Username)

	send(t, ctx, connB, proto.Inbound{Action: proto.ActionRegister, Username: "alice"})
	require.Equal(t, proto.Outbound{Type: proto.OutboundTypeError, Code: core.ErrCodeNameTaken, Message: "Username taken"}, read(t, ctx, connB))

	send(t, ctx, connA, proto.Inbound{Action: proto.ActionCreateRoom, Room: "dev"})
	require.Equal(t, []string{"general", "dev"}, read(t, ctx, connA).Rooms)

	send(t, ctx, connA, proto.Inbound{Action: proto.ActionJoinRoom, Room: "dev"})
	require.Equal(t, proto.Outbound{Type: proto.OutboundTypeSystem, Event: proto.EventRoomChanged, Room: "dev"}, read(t, ctx, connA))
	require.Equal(t, proto.Outbound{
		Type:     proto.OutboundTypeSystem,
		Event:    proto.EventUserLeft,
		Room:     "general",
		Username: "alice",
	}, read(t, ctx, connW))

	send(t, ctx, connA, proto.Inbound{Action: proto.ActionSendMessage, Text: "hi"})
	require.Equal(t, proto.Outbound{Type: proto.OutboundTypeMessage, Room: "dev", From: "alice", Text: "hi"}, read(t, ctx, connA))
}

func TestWebSocketInvalidPayloadKeepsConnection(t *testing.T) {
	ts := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)

	for _, raw := range []string{"not json", "[1,2]", `{"action": 5}`, "null", `"x"`} {
		require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(raw)))
		out := read(t, ctx, conn)
		require.Equal(t, proto.OutboundTypeError, out.Type, raw)
		require.Equal(t, "Invalid JSON", out.Message, raw)
	}

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{}`)))
	require.Equal(t, "Missing 'action'", read(t, ctx, conn).Message)

	send(t, ctx, conn, proto.Inbound{Action: "dance"})
	require.Equal(t, "Unknown action 'dance'", read(t, ctx, conn).Message)

	// Still usable.
	register(t, ctx, conn, "alice")
}

func TestWebSocketDisconnectBroadcastsUserLeft(t *testing.T) {
	ts := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dial(t, ctx, ts)
	connB := dial(t, ctx, ts)

	register(t, ctx, connA, "alice")
	register(t, ctx, connB, "bob")
	require.Equal(t, "bob", read(t, ctx, connA).Username)

	require.NoError(t, connA.Close(websocket.StatusNormalClosure, "bye"))

	require.Equal(t, proto.Outbound{
		Type:     proto.OutboundTypeSystem,
		Event:    proto.EventUserLeft,
		Room:     core.DefaultRoom,
		Username: "alice",
	}, read(t, ctx, connB))

	// The name can be claimed again once the session is gone.
	connC := dial(t, ctx, ts)
	register(t, ctx, connC, "alice")
}

func TestListRoomsEndpoint(t *testing.T) {
	ts := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	register(t, ctx, conn, "alice")
	send(t, ctx, conn, proto.Inbound{Action: proto.ActionCreateRoom, Room: "dev"})
	read(t, ctx, conn)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var rooms []RoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	require.Equal(t, []RoomResponse{{Name: "general", Members: 1}, {Name: "dev", Members: 0}}, rooms)
}

func TestWebSocketOversizedFrameCloses(t *testing.T) {
	cfg := config.Default()
	cfg.MaxMessageBytes = 1024
	ts := startTestServerWithConfig(t, &cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	register(t, ctx, conn, "alice")

	big := `{"action":"send_message","text":"` + strings.Repeat("x", 2048) + `"}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(big)))

	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	require.Equal(t, websocket.StatusMessageTooBig, websocket.CloseStatus(err))
}
