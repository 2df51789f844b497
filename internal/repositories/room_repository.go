package repositories

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"roomchat/internal/models"
	"roomchat/internal/sanitize"
)

var (
	ErrInvalidName      = errors.New("invalid name")
	ErrDuplicateName    = errors.New("room already exists")
	ErrRoomNotFound     = errors.New("room not found")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNameTaken        = errors.New("username taken in this room")
	ErrNotDMParticipant = errors.New("not a participant of this direct message")
	ErrMessageNotFound  = errors.New("message not found")
)

// Limits bounds names and history kept by a RoomStore.
type Limits struct {
	HistoryLimit      int
	MaxRoomNameLength int
	MaxUsernameLength int
}

// DefaultLimits mirrors the defaults of the service configuration.
func DefaultLimits() Limits {
	return Limits{HistoryLimit: 50, MaxRoomNameLength: 20, MaxUsernameLength: 15}
}

// JoinResult is returned by a successful join.
type JoinResult struct {
	Room        *Room
	DisplayName string
	History     []models.Message
	Users       []string
	// Rejoined is true when the same connection already held the name.
	Rejoined bool
	// Replaced lists names this connection held in the room before joining under a new one.
	Replaced []string
}

// Departure describes one membership removed by ReleaseConnection.
type Departure struct {
	Room      string
	Username  string
	Remaining int
	Deleted   bool
}

// RoomRepository abstracts room state.
type RoomRepository interface {
	CreateRoom(name, password string) (*Room, error)
	EnsureRoom(name string) (*Room, bool)
	Snapshot() []models.RoomSummary
	ResolveDMName(name string) (string, bool)
	JoinRoom(name, displayName, password, connID string) (JoinResult, error)
	LeaveRoom(name, displayName string) (int, bool)
	DiscardIfEmpty(name string) bool
	ReleaseConnection(connID string) []Departure
	AppendMessage(roomName string, msg models.Message) error
	AddReaction(roomName, messageID, symbol string) (int, error)
	FindMessage(roomName, messageID string) (models.Message, bool)
	Members(roomName string) (map[string]string, bool)
	Len() int
}

// RoomStore is the in-memory RoomRepository. It is not safe for concurrent use:
// every call must come from the dispatch worker.
type RoomStore struct {
	rooms  map[string]*Room
	limits Limits
	seq    uint64
	now    func() time.Time
}

// NewRoomStore constructs an empty RoomStore.
func NewRoomStore(limits Limits) *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*Room),
		limits: limits,
		now:    time.Now,
	}
}

// CreateRoom sanitizes and truncates name, then registers an empty room.
// DM names are reserved for the join path: CreateRoom rejects them with ErrInvalidName and
// JoinRoom creates them on first use.
func (s *RoomStore) CreateRoom(name, password string) (*Room, error) {
	clean := sanitize.Name(name, s.limits.MaxRoomNameLength)
	if clean == "" || IsDMName(clean) {
		return nil, ErrInvalidName
	}
	if _, ok := s.rooms[clean]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, clean)
	}
	return s.add(clean, password), nil
}

// EnsureRoom returns the room called name, creating an unlocked one when absent.
// The boolean reports whether the room was created by this call.
func (s *RoomStore) EnsureRoom(name string) (*Room, bool) {
	if room, ok := s.rooms[name]; ok {
		return room, false
	}
	return s.add(name, ""), true
}

func (s *RoomStore) add(name, password string) *Room {
	s.seq++
	room := newRoom(name, password, s.now().UTC(), s.seq)
	s.rooms[name] = room
	return room
}

// Snapshot lists public rooms in creation order. DM rooms are left out.
func (s *RoomStore) Snapshot() []models.RoomSummary {
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		if IsDMName(room.Name) {
			continue
		}
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].seq < rooms[j].seq })

	out := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.summary())
	}
	return out
}

// lookup resolves a client-supplied room name. The name is tried verbatim first, since
// clients echo names from the lobby, then in sanitized form.
func (s *RoomStore) lookup(name string) (*Room, bool) {
	if room, ok := s.rooms[strings.TrimSpace(name)]; ok {
		return room, true
	}
	room, ok := s.rooms[sanitize.Name(name, s.dmNameLength())]
	return room, ok
}

// ResolveDMName returns the key a DM join should use, or false when name is not a DM name.
func (s *RoomStore) ResolveDMName(name string) (string, bool) {
	clean := sanitize.Name(name, s.dmNameLength())
	if !IsDMName(clean) {
		return "", false
	}
	return clean, true
}

func (s *RoomStore) dmNameLength() int {
	return len(DMPrefix) + 1 + 2*s.limits.MaxUsernameLength
}

// JoinRoom adds displayName to the room.
//
// A display name is unique within a room. When the connection asking to join already holds
// the name, the join succeeds again without changes; this lets a client reconnect under the
// same name. If that connection holds a different name in the room, the old entry is replaced.
func (s *RoomStore) JoinRoom(name, displayName, password, connID string) (JoinResult, error) {
	room, ok := s.lookup(name)
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}
	if room.password != "" && room.password != password {
		return JoinResult{}, ErrWrongPassword
	}

	clean := sanitize.Name(displayName, s.limits.MaxUsernameLength)
	if clean == "" {
		return JoinResult{}, ErrInvalidName
	}
	if IsDMName(room.Name) && !IsDMParticipant(room.Name, clean) {
		return JoinResult{}, ErrNotDMParticipant
	}

	holder, taken := room.members[clean]
	if taken && holder != connID {
		return JoinResult{}, ErrNameTaken
	}
	rejoined := taken
	var replaced []string
	if !taken {
		replaced = room.removeConn(connID)
		room.members[clean] = connID
	}

	return JoinResult{
		Room:        room,
		DisplayName: clean,
		History:     room.History(),
		Users:       room.MemberNames(),
		Rejoined:    rejoined,
		Replaced:    replaced,
	}, nil
}

// LeaveRoom removes the member and deletes the room once it is empty.
// It returns the remaining member count and whether the room was deleted.
// Unknown rooms or members are ignored.
func (s *RoomStore) LeaveRoom(name, displayName string) (int, bool) {
	room, ok := s.rooms[name]
	if !ok {
		return 0, false
	}
	delete(room.members, displayName)
	if len(room.members) == 0 {
		delete(s.rooms, name)
		return 0, true
	}
	return len(room.members), false
}

// DiscardIfEmpty deletes the room when it has no members and reports whether it did.
func (s *RoomStore) DiscardIfEmpty(name string) bool {
	room, ok := s.rooms[name]
	if !ok || len(room.members) > 0 {
		return false
	}
	delete(s.rooms, name)
	return true
}

// ReleaseConnection removes every membership held by connID, deleting rooms left empty.
func (s *RoomStore) ReleaseConnection(connID string) []Departure {
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].seq < rooms[j].seq })

	var departures []Departure
	for _, room := range rooms {
		for _, name := range room.removeConn(connID) {
			departures = append(departures, Departure{Room: room.Name, Username: name, Remaining: len(room.members)})
		}
		if len(room.members) == 0 {
			delete(s.rooms, room.Name)
			if n := len(departures); n > 0 && departures[n-1].Room == room.Name {
				departures[n-1].Deleted = true
			}
		}
	}
	return departures
}

// AppendMessage stores msg at the end of the room history, evicting the oldest message
// once the history limit is exceeded.
func (s *RoomStore) AppendMessage(roomName string, msg models.Message) error {
	room, ok := s.rooms[roomName]
	if !ok {
		return ErrRoomNotFound
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string]int)
	}
	room.push(msg, s.limits.HistoryLimit)
	return nil
}

// AddReaction increments the counter for symbol on the message and returns the new count.
// Every call counts; reactions are not deduplicated per reactor.
func (s *RoomStore) AddReaction(roomName, messageID, symbol string) (int, error) {
	room, ok := s.rooms[roomName]
	if !ok {
		return 0, ErrRoomNotFound
	}
	msg, ok := room.message(messageID)
	if !ok {
		return 0, ErrMessageNotFound
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string]int)
	}
	msg.Reactions[symbol]++
	return msg.Reactions[symbol], nil
}

// FindMessage returns a copy of a message still held in the room history.
func (s *RoomStore) FindMessage(roomName, messageID string) (models.Message, bool) {
	room, ok := s.rooms[roomName]
	if !ok {
		return models.Message{}, false
	}
	msg, ok := room.message(messageID)
	if !ok {
		return models.Message{}, false
	}
	return msg.Clone(), true
}

// Members returns a copy of the room's display name to connection id mapping.
func (s *RoomStore) Members(roomName string) (map[string]string, bool) {
	room, ok := s.rooms[roomName]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(room.members))
	for name, connID := range room.members {
		out[name] = connID
	}
	return out, true
}

// Len returns the number of live rooms, DM rooms included.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}

var _ RoomRepository = (*RoomStore)(nil)
