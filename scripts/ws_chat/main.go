package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:6789/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "", "room to join after registering")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(in proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, in); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.Inbound{Action: proto.ActionRegister, Username: *user})
	if *room != "" {
		send(proto.Inbound{Action: proto.ActionJoinRoom, Room: *room})
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type messages and press Enter to send. Commands: /rooms /create <room> /join <room> /leave. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		printOutbound(outbound)
	}
}

func printOutbound(out proto.Outbound) {
	switch out.Type {
	case proto.OutboundTypeMessage:
		fmt.Printf("[%s] %s: %s\n", out.Room, color.Bold.Sprint(out.From), out.Text)
	case proto.OutboundTypeRoomsList:
		color.Cyan.Printf("rooms: %s\n", strings.Join(out.Rooms, ", "))
	case proto.OutboundTypeError:
		color.Red.Printf("error: %s\n", out.Message)
	case proto.OutboundTypeSystem:
		switch out.Event {
		case proto.EventRegistered:
			color.Green.Printf("registered as %s in %s\n", out.Username, out.Room)
		case proto.EventRoomChanged:
			color.Green.Printf("now in %s\n", out.Room)
		case proto.EventLeftRoom:
			color.Green.Printf("left %s\n", out.Room)
		case proto.EventUserJoined:
			color.Gray.Printf("[room %s] %s joined\n", out.Room, out.Username)
		case proto.EventUserLeft:
			color.Gray.Printf("[room %s] %s left\n", out.Room, out.Username)
		default:
			fmt.Printf("system event=%s room=%s\n", out.Event, out.Room)
		}
	default:
		fmt.Printf("type=%s %+v\n", out.Type, out)
	}
}

// parseLine turns an input line into a request. Empty lines yield ok=false.
func parseLine(line string) (proto.Inbound, bool) {
	text := strings.TrimSpace(line)
	if text == "" {
		return proto.Inbound{}, false
	}
	if !strings.HasPrefix(text, "/") {
		return proto.Inbound{Action: proto.ActionSendMessage, Text: text}, true
	}

	cmd, arg, _ := strings.Cut(text[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "rooms":
		return proto.Inbound{Action: proto.ActionListRooms}, true
	case "create":
		return proto.Inbound{Action: proto.ActionCreateRoom, Room: arg}, true
	case "join":
		return proto.Inbound{Action: proto.ActionJoinRoom, Room: arg}, true
	case "leave":
		return proto.Inbound{Action: proto.ActionLeaveRoom}, true
	default:
		// Let the server report it.
		return proto.Inbound{Action: cmd}, true
	}
}

func writeLoop(ctx context.Context, send func(proto.Inbound)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if in, ok := parseLine(line); ok {
				send(in)
			}
		}
	}
}
