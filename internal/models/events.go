package models

// Outbound event names.
const (
	EventRoomsList    = "rooms:list"
	EventChatMessage  = "chat:message"
	EventChatReaction = "chat:reaction"
	EventChatTyping   = "chat:typing"
	EventUserJoined   = "room:user-joined"
	EventUserLeft     = "room:user-left"
	EventAck          = "ack"
)

// ReactionEvent is broadcast after a reaction counter changes.
type ReactionEvent struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
	Count     int    `json:"count"`
}

// TypingEvent is broadcast to everyone in the room except the typist.
type TypingEvent struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// UserJoinedEvent announces a new member to the rest of the room.
type UserJoinedEvent struct {
	Username  string `json:"username"`
	UserCount int    `json:"userCount"`
}

// UserLeftEvent announces a departure to the remaining members.
type UserLeftEvent struct {
	Username string `json:"username"`
}
