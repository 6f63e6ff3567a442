package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:6789/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to register")
	room := flag.String("room", "smoke", "room to create and join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	steps := []proto.Inbound{
		{Action: proto.ActionRegister, Username: *user},
		{Action: proto.ActionCreateRoom, Room: *room},
		{Action: proto.ActionJoinRoom, Room: *room},
		{Action: proto.ActionSendMessage, Text: *text},
	}
	for _, step := range steps {
		if err := wsjson.Write(ctx, conn, step); err != nil {
			return fmt.Errorf("send %s: %w", step.Action, err)
		}
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		switch outbound.Type {
		case proto.OutboundTypeError:
			// An existing room is fine when the smoke test is rerun.
			if outbound.Code != "room_exists" {
				return fmt.Errorf("server error: %s", outbound.Message)
			}
		case proto.OutboundTypeRoomsList:
			fmt.Printf("Rooms: %v\n", outbound.Rooms)
		case proto.OutboundTypeMessage:
			fmt.Printf("Message: room=%s from=%s text=%q\n", outbound.Room, outbound.From, outbound.Text)
			if outbound.From == *user && outbound.Text == *text {
				return nil
			}
		}
	}
}
