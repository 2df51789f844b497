package dispatch

import (
	"encoding/json"

	"roomchat/internal/models"
)

// Inbound event types. Connect and disconnect are raised by the transport itself.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventRoomCreate   = "room:create"
	EventRoomJoin     = "room:join"
	EventRoomLeave    = "room:leave"
	EventChatMessage  = "chat:message"
	EventChatTyping   = "chat:typing"
	EventChatReaction = "chat:reaction"
)

// Frame is the JSON envelope exchanged with clients in both directions.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Inbound is one event received from a connection.
type Inbound struct {
	ConnID    string
	Type      string
	RequestID string
	Payload   json.RawMessage
}

// FromFrame builds the Inbound for a frame read from connID.
func FromFrame(connID string, frame Frame) Inbound {
	return Inbound{ConnID: connID, Type: frame.Type, RequestID: frame.RequestID, Payload: frame.Payload}
}

type createPayload struct {
	RoomName string `json:"roomName"`
	Password string `json:"password"`
}

type joinPayload struct {
	RoomName string `json:"roomName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type messagePayload struct {
	Text    string        `json:"text"`
	Image   string        `json:"image"`
	ReplyTo *replyPayload `json:"replyTo"`
}

type replyPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

type typingPayload struct {
	IsTyping bool `json:"isTyping"`
}

type reactionPayload struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type createAck struct {
	OK       bool   `json:"ok"`
	RoomName string `json:"roomName"`
}

type joinAck struct {
	OK       bool             `json:"ok"`
	RoomName string           `json:"roomName"`
	Username string           `json:"username"`
	History  []models.Message `json:"history"`
	Users    []string         `json:"users"`
}

type okAck struct {
	OK bool `json:"ok"`
}

type errorAck struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// decode unmarshals a payload. A missing payload decodes to the zero value.
func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// decodeTyping accepts either {"isTyping": bool} or a bare boolean.
func decodeTyping(raw json.RawMessage) (bool, error) {
	var bare bool
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var p typingPayload
	if err := decode(raw, &p); err != nil {
		return false, err
	}
	return p.IsTyping, nil
}

// ErrorFrame encodes an error ack for frames the transport rejects before they reach the engine.
func ErrorFrame(requestID string, err error) ([]byte, bool) {
	return encode(models.EventAck, requestID, errorAck{Error: err.Error(), Code: Code(err)})
}
