package ws

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// Subprotocols a client may request in Sec-WebSocket-Protocol.
const (
	ProtocolJSON     = "json"
	ProtocolProtobuf = "protobuf"
)

// ReportTypeURL tags binary report frames: a zstd-compressed google.protobuf.Struct.
const ReportTypeURL = "type.googleapis.com/google.protobuf.Struct+zstd"

// Upstream message types for internal routing
type (
	joinGroupRequest struct {
		group string
		ackID *uint64
	}
	leaveGroupRequest struct {
		group string
		ackID *uint64
	}
	pingRequest struct{}
)

type upstreamMessage struct {
	Type  string  `json:"type"`
	Group string  `json:"group"`
	AckID *uint64 `json:"ackId"`
}

// parseUpstreamMessage parses a JSON-encoded upstream message. Upstream
// messages are JSON for every subprotocol.
func parseUpstreamMessage(data []byte) (any, error) {
	var msg upstreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal upstream message: %w", err)
	}

	switch msg.Type {
	case "joinGroup":
		return &joinGroupRequest{group: normalizeGroup(msg.Group), ackID: msg.AckID}, nil
	case "leaveGroup":
		return &leaveGroupRequest{group: normalizeGroup(msg.Group), ackID: msg.AckID}, nil
	case "ping":
		return &pingRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", msg.Type)
	}
}

// Groups are symbols, matched case-insensitively.
func normalizeGroup(group string) string {
	return strings.ToUpper(strings.TrimSpace(group))
}

func buildConnectedMessage(connectionID, protocol string) []byte {
	msg := map[string]any{
		"type":         "system",
		"event":        "connected",
		"connectionId": connectionID,
		"protocol":     protocol,
	}
	data, _ := json.Marshal(msg)
	return data
}

func buildAckMessage(ackID uint64, success bool) []byte {
	msg := map[string]any{
		"type":    "ack",
		"ackId":   ackID,
		"success": success,
	}
	data, _ := json.Marshal(msg)
	return data
}

func buildPongMessage() []byte {
	data, _ := json.Marshal(map[string]any{"type": "pong"})
	return data
}

// buildDataMessageJSON embeds the report JSON directly.
func buildDataMessageJSON(group string, reportJSON []byte) []byte {
	msg := map[string]any{
		"type":     "message",
		"group":    group,
		"dataType": "json",
		"data":     json.RawMessage(reportJSON),
	}
	data, _ := json.Marshal(msg)
	return data
}

// buildDataMessageBinary wraps a compressed report in google.protobuf.Any.
func buildDataMessageBinary(compressed []byte) ([]byte, error) {
	anyMsg := &anypb.Any{
		TypeUrl: ReportTypeURL,
		Value:   compressed,
	}
	data, err := proto.Marshal(anyMsg)
	if err != nil {
		return nil, fmt.Errorf("marshal any: %w", err)
	}
	return data, nil
}
