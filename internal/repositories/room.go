package repositories

import (
	"sort"
	"time"

	"roomchat/internal/models"
)

// Room is a named chat channel with its members and bounded history.
type Room struct {
	Name      string
	CreatedAt time.Time

	password string
	members  map[string]string // display name -> connection id
	history  []models.Message
	seq      uint64
}

func newRoom(name, password string, createdAt time.Time, seq uint64) *Room {
	return &Room{
		Name:      name,
		CreatedAt: createdAt,
		password:  password,
		members:   make(map[string]string),
		seq:       seq,
	}
}

// Locked reports whether a password is required to join.
func (r *Room) Locked() bool {
	return r.password != ""
}

// MemberCount returns the number of members.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// MemberNames returns the display names of all members, sorted.
func (r *Room) MemberNames() []string {
	names := make([]string, 0, len(r.members))
	for name := range r.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// History returns a copy of the message history, oldest first.
func (r *Room) History() []models.Message {
	out := make([]models.Message, 0, len(r.history))
	for _, msg := range r.history {
		out = append(out, msg.Clone())
	}
	return out
}

func (r *Room) summary() models.RoomSummary {
	return models.RoomSummary{
		Name:      r.Name,
		UserCount: len(r.members),
		IsLocked:  r.Locked(),
	}
}

// push appends msg and evicts the oldest entries while the history is over limit.
func (r *Room) push(msg models.Message, limit int) {
	r.history = append(r.history, msg)
	for len(r.history) > limit {
		copy(r.history, r.history[1:])
		r.history[len(r.history)-1] = models.Message{}
		r.history = r.history[:len(r.history)-1]
	}
}

func (r *Room) message(id string) (*models.Message, bool) {
	for i := range r.history {
		if r.history[i].ID == id {
			return &r.history[i], true
		}
	}
	return nil, false
}

// removeConn drops any entry held by connID and returns the freed display names.
func (r *Room) removeConn(connID string) []string {
	var names []string
	for name, holder := range r.members {
		if holder == connID {
			delete(r.members, name)
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
