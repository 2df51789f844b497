package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"roomchat/internal/models"
	"roomchat/internal/observability"
	"roomchat/internal/sanitize"
	"roomchat/internal/session"
)

const imagePrefix = "data:image/"

func (e *Engine) connect(in Inbound) {
	e.sessions.Bind(in.ConnID)
	e.send(in.ConnID, models.EventRoomsList, e.rooms.Snapshot())
}

func (e *Engine) createRoom(ctx context.Context, in Inbound) error {
	if _, ok := e.sessions.Get(in.ConnID); !ok {
		return ErrUnknownConnection
	}
	var p createPayload
	if err := decode(in.Payload, &p); err != nil {
		return malformed("room:create payload: %v", err)
	}

	room, err := e.rooms.CreateRoom(p.RoomName, p.Password)
	if err != nil {
		return err
	}
	e.opts.Auditor.Emit(ctx, "INFO", fmt.Sprintf("room created name=%s locked=%t", room.Name, room.Locked()), in.RequestID, nil)

	e.broadcastLobby()
	e.ack(in, createAck{OK: true, RoomName: room.Name})
	return nil
}

func (e *Engine) joinRoom(ctx context.Context, in Inbound) error {
	if _, ok := e.sessions.Get(in.ConnID); !ok {
		return ErrUnknownConnection
	}
	var p joinPayload
	if err := decode(in.Payload, &p); err != nil {
		return malformed("room:join payload: %v", err)
	}

	roomName := p.RoomName
	created := false
	if dmName, ok := e.rooms.ResolveDMName(p.RoomName); ok {
		roomName = dmName
		created = e.ensureRoom(ctx, in, dmName)
	}

	res, err := e.rooms.JoinRoom(roomName, p.Username, p.Password, in.ConnID)
	if err != nil {
		if created {
			e.rooms.DiscardIfEmpty(roomName)
		}
		return err
	}
	e.sessions.SetIdentity(in.ConnID, res.DisplayName, res.Room.Name)

	for _, old := range res.Replaced {
		e.broadcastRoom(res.Room.Name, in.ConnID, models.EventUserLeft, models.UserLeftEvent{Username: old})
	}
	if !res.Rejoined {
		e.broadcastRoom(res.Room.Name, in.ConnID, models.EventUserJoined, models.UserJoinedEvent{
			Username:  res.DisplayName,
			UserCount: len(res.Users),
		})
	}
	e.ack(in, joinAck{
		OK:       true,
		RoomName: res.Room.Name,
		Username: res.DisplayName,
		History:  res.History,
		Users:    res.Users,
	})
	e.broadcastLobby()
	return nil
}

// ensureRoom creates a DM room on first use. It reports whether the room is new.
func (e *Engine) ensureRoom(ctx context.Context, in Inbound, name string) bool {
	_, created := e.rooms.EnsureRoom(name)
	if created {
		e.opts.Auditor.Emit(ctx, "INFO", "direct room created name="+name, in.RequestID, nil)
	}
	return created
}

func (e *Engine) leaveRoom(ctx context.Context, in Inbound) error {
	sess, err := e.inRoom(in.ConnID)
	if err != nil {
		return err
	}
	e.leaveCurrent(ctx, in.ConnID, sess)
	e.sessions.LeaveRoom(in.ConnID)
	e.broadcastLobby()
	return nil
}

func (e *Engine) disconnect(ctx context.Context, in Inbound) {
	sess, ok := e.sessions.Get(in.ConnID)
	if !ok {
		return
	}
	changed := sess.State() == session.StateInRoom
	if changed {
		e.leaveCurrent(ctx, in.ConnID, sess)
	}
	// Rooms joined earlier and never left explicitly still list this connection.
	for _, d := range e.rooms.ReleaseConnection(in.ConnID) {
		e.afterDeparture(ctx, in.ConnID, d.Room, d.Username, d.Deleted)
		changed = true
	}
	e.sessions.Remove(in.ConnID)
	if changed {
		e.broadcastLobby()
	}
}

func (e *Engine) leaveCurrent(ctx context.Context, connID string, sess session.Session) {
	_, deleted := e.rooms.LeaveRoom(sess.RoomName, sess.DisplayName)
	e.afterDeparture(ctx, connID, sess.RoomName, sess.DisplayName, deleted)
}

func (e *Engine) afterDeparture(ctx context.Context, connID, roomName, username string, deleted bool) {
	if deleted {
		e.opts.Auditor.Emit(ctx, "INFO", "room deleted name="+roomName, "", nil)
		return
	}
	e.broadcastRoom(roomName, connID, models.EventUserLeft, models.UserLeftEvent{Username: username})
}

func (e *Engine) sendMessage(in Inbound) error {
	sess, err := e.inRoom(in.ConnID)
	if err != nil {
		return err
	}
	var p messagePayload
	if err := decode(in.Payload, &p); err != nil {
		return malformed("chat:message payload: %v", err)
	}

	text := strings.TrimSpace(sanitize.Clean(p.Text))
	if text == "" && p.Image == "" {
		return ErrEmptyMessage
	}
	if n := sanitize.Length(text); n > e.opts.MaxMessageLength {
		return fmt.Errorf("%w: %d characters, limit %d", ErrMessageTooLarge, n, e.opts.MaxMessageLength)
	}
	if p.Image != "" && !strings.HasPrefix(p.Image, imagePrefix) {
		return ErrInvalidImage
	}

	msg := models.Message{
		ID:        e.ids.Next(),
		Username:  sess.DisplayName,
		Text:      text,
		Image:     p.Image,
		Time:      e.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		ReplyTo:   e.replySnapshot(sess.RoomName, p.ReplyTo),
		Reactions: map[string]int{},
	}
	if err := e.rooms.AppendMessage(sess.RoomName, msg); err != nil {
		return err
	}
	observability.IncChatMessage(msg.Image != "")

	e.broadcastRoom(sess.RoomName, "", models.EventChatMessage, msg)
	e.ack(in, okAck{OK: true})
	return nil
}

// replySnapshot copies the quoted message at reply time. When the original has already left
// the history, the client's own quote is kept after sanitizing.
func (e *Engine) replySnapshot(roomName string, p *replyPayload) *models.ReplyTo {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return nil
	}
	if original, ok := e.rooms.FindMessage(roomName, p.ID); ok {
		return &models.ReplyTo{ID: original.ID, Username: original.Username, Text: original.Text}
	}
	return &models.ReplyTo{
		ID:       sanitize.Name(p.ID, 32),
		Username: sanitize.Name(p.Username, e.opts.MaxUsernameLength),
		Text:     sanitize.Truncate(sanitize.Clean(p.Text), e.opts.MaxMessageLength),
	}
}

func (e *Engine) setTyping(in Inbound) error {
	sess, err := e.inRoom(in.ConnID)
	if err != nil {
		return err
	}
	isTyping, err := decodeTyping(in.Payload)
	if err != nil {
		return malformed("chat:typing payload: %v", err)
	}
	e.broadcastEphemeral(sess.RoomName, in.ConnID, models.EventChatTyping, models.TypingEvent{
		Username: sess.DisplayName,
		IsTyping: isTyping,
	})
	return nil
}

func (e *Engine) react(in Inbound) error {
	sess, err := e.inRoom(in.ConnID)
	if err != nil {
		return err
	}
	var p reactionPayload
	if err := decode(in.Payload, &p); err != nil {
		return malformed("chat:reaction payload: %v", err)
	}
	symbol := sanitize.Name(p.Reaction, e.opts.MaxReactionLength)
	if p.MessageID == "" || symbol == "" {
		return malformed("chat:reaction needs messageId and reaction")
	}

	count, err := e.rooms.AddReaction(sess.RoomName, p.MessageID, symbol)
	if err != nil {
		return err
	}
	e.broadcastRoom(sess.RoomName, "", models.EventChatReaction, models.ReactionEvent{
		MessageID: p.MessageID,
		Reaction:  symbol,
		Count:     count,
	})
	return nil
}

// inRoom returns the caller's session when it is in a room.
func (e *Engine) inRoom(connID string) (session.Session, error) {
	sess, ok := e.sessions.Get(connID)
	if !ok {
		return session.Session{}, ErrUnknownConnection
	}
	if sess.State() != session.StateInRoom {
		return session.Session{}, ErrNotInRoom
	}
	return sess, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, fmt.Sprintf(format, args...))
}

func sortedConnIDs(members map[string]string) []string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	ids := make([]string, 0, len(names))
	for _, name := range names {
		ids = append(ids, members[name])
	}
	return ids
}
