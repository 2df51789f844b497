// Package session binds live connections to the identity and room they chose.
package session

import "sort"

// State is the protocol state of a connection, derived from its Session.
type State int

const (
	StateAnonymous State = iota
	StateIdle
	StateInRoom
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInRoom:
		return "in_room"
	default:
		return "anonymous"
	}
}

// Session is the per-connection record. Empty strings mean "not set".
type Session struct {
	DisplayName string
	RoomName    string
}

// State reports where the connection sits in the protocol state machine.
func (s Session) State() State {
	switch {
	case s.DisplayName == "":
		return StateAnonymous
	case s.RoomName == "":
		return StateIdle
	default:
		return StateInRoom
	}
}

// Table maps connection ids to sessions. It is not safe for concurrent use:
// the dispatch worker is its only caller.
type Table struct {
	sessions map[string]*Session
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

// Bind creates an empty session for a new connection. Binding an id twice resets it.
func (t *Table) Bind(connID string) {
	t.sessions[connID] = &Session{}
}

// SetIdentity records the display name and room after a committed join.
// It reports false when the connection is unknown.
func (t *Table) SetIdentity(connID, displayName, roomName string) bool {
	s, ok := t.sessions[connID]
	if !ok {
		return false
	}
	s.DisplayName = displayName
	s.RoomName = roomName
	return true
}

// Get returns a copy of the session. The boolean is false when the connection is
// not bound, which is distinct from a bound session with empty fields.
func (t *Table) Get(connID string) (Session, bool) {
	s, ok := t.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// LeaveRoom forgets the room but keeps the display name, so the session becomes idle.
// It reports false when the connection is unknown.
func (t *Table) LeaveRoom(connID string) bool {
	s, ok := t.sessions[connID]
	if !ok {
		return false
	}
	s.RoomName = ""
	return true
}

// Clear resets the identity and room but keeps the row.
func (t *Table) Clear(connID string) {
	if s, ok := t.sessions[connID]; ok {
		*s = Session{}
	}
}

// Remove deletes the row entirely.
func (t *Table) Remove(connID string) {
	delete(t.sessions, connID)
}

// Len returns the number of bound connections.
func (t *Table) Len() int {
	return len(t.sessions)
}

// ConnIDs lists every bound connection in a stable order.
func (t *Table) ConnIDs() []string {
	ids := make([]string, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
