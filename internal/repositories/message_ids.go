package repositories

import (
	"strconv"
	"time"
)

// MessageIDs hands out message ids derived from the millisecond clock. Ids are strictly
// increasing even when several messages land in the same millisecond or the clock steps back.
// Not safe for concurrent use.
type MessageIDs struct {
	last int64
	now  func() time.Time
}

// NewMessageIDs creates a generator backed by time.Now.
func NewMessageIDs() *MessageIDs {
	return &MessageIDs{now: time.Now}
}

// Next returns the next id.
func (g *MessageIDs) Next() string {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return strconv.FormatInt(id, 10)
}
