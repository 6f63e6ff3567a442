package http

import (
	"bytes"
	"encoding/json"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// inboundToCommand parses one frame. Every frame maps to exactly one command
// so that replies, including parse errors, stay ordered on the hub.
func inboundToCommand(data []byte) core.Command {
	// null decodes into a zero struct without error; only objects are valid.
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return core.Command{Kind: core.CommandInvalid}
	}

	var inbound proto.Inbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		return core.Command{Kind: core.CommandInvalid}
	}

	cmd := core.Command{
		Action:   inbound.Action,
		Username: inbound.Username,
		Room:     inbound.Room,
		Text:     inbound.Text,
	}
	switch inbound.Action {
	case "":
		cmd.Kind = core.CommandMissingAction
	case proto.ActionRegister:
		cmd.Kind = core.CommandRegister
	case proto.ActionListRooms:
		cmd.Kind = core.CommandListRooms
	case proto.ActionCreateRoom:
		cmd.Kind = core.CommandCreateRoom
	case proto.ActionJoinRoom:
		cmd.Kind = core.CommandJoinRoom
	case proto.ActionLeaveRoom:
		cmd.Kind = core.CommandLeaveRoom
	case proto.ActionSendMessage:
		cmd.Kind = core.CommandSendMessage
	default:
		cmd.Kind = core.CommandUnknown
	}
	return cmd
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomsList:
		return proto.Outbound{Type: proto.OutboundTypeRoomsList, Rooms: event.Rooms}
	case core.EventRegistered:
		return proto.Outbound{
			Type:     proto.OutboundTypeSystem,
			Event:    proto.EventRegistered,
			Room:     event.Room,
			Username: event.User,
		}
	case core.EventRoomChanged:
		return proto.Outbound{Type: proto.OutboundTypeSystem, Event: proto.EventRoomChanged, Room: event.Room}
	case core.EventLeftRoom:
		return proto.Outbound{Type: proto.OutboundTypeSystem, Event: proto.EventLeftRoom, Room: event.Room}
	case core.EventUserJoined:
		return proto.Outbound{
			Type:     proto.OutboundTypeSystem,
			Event:    proto.EventUserJoined,
			Room:     event.Room,
			Username: event.User,
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type:     proto.OutboundTypeSystem,
			Event:    proto.EventUserLeft,
			Room:     event.Room,
			Username: event.User,
		}
	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Room: event.Message.Room,
			From: event.Message.From,
			Text: event.Message.Text,
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Code: "unknown", Message: "unknown error"}
		}
		return proto.Outbound{Type: proto.OutboundTypeError, Code: event.Error.Code, Message: event.Error.Message}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Code: "unknown", Message: "unknown event"}
	}
}
