package models

// Message represents a chat message kept in a room's history.
type Message struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Text      string         `json:"text"`
	Image     string         `json:"image,omitempty"`
	Time      string         `json:"time"`
	ReplyTo   *ReplyTo       `json:"replyTo,omitempty"`
	Reactions map[string]int `json:"reactions"`
}

// ReplyTo is a copy of the quoted message taken when the reply was sent.
type ReplyTo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// Clone returns a deep copy so history snapshots cannot be mutated by callers.
func (m Message) Clone() Message {
	out := m
	if m.ReplyTo != nil {
		reply := *m.ReplyTo
		out.ReplyTo = &reply
	}
	out.Reactions = make(map[string]int, len(m.Reactions))
	for symbol, count := range m.Reactions {
		out.Reactions[symbol] = count
	}
	return out
}
