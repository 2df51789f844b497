// Package dispatch runs the chat protocol: it validates inbound events against the session
// table and room store, mutates them, and decides which connections hear about it.
package dispatch

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"roomchat/internal/models"
	"roomchat/internal/observability"
	"roomchat/internal/repositories"
	"roomchat/internal/session"
)

// Deliverer carries encoded frames to connections. Deliver must not block; frames for
// connections that are gone or too slow may be dropped.
type Deliverer interface {
	Deliver(connID string, frame []byte)
}

// Auditor records room lifecycle events.
type Auditor interface {
	Emit(ctx context.Context, level, text, requestID string, actor *string)
}

// Options tunes an Engine.
type Options struct {
	MaxMessageLength  int
	MaxUsernameLength int
	MaxReactionLength int
	QueueSize         int
	Auditor           Auditor
}

// DefaultOptions returns the limits used when the service configuration does not override them.
func DefaultOptions() Options {
	return Options{MaxMessageLength: 500, MaxUsernameLength: 15, MaxReactionLength: 16, QueueSize: 256}
}

// Engine owns the session table and room store and is the only code that mutates them.
// Turns run one at a time on the goroutine executing Run, or on the caller of Handle.
type Engine struct {
	rooms    repositories.RoomRepository
	sessions *session.Table
	ids      *repositories.MessageIDs
	out      Deliverer
	opts     Options
	now      func() time.Time

	turns chan func()
	done  chan struct{}
}

// NewEngine builds an Engine around its state and the transport's Deliverer.
func NewEngine(rooms repositories.RoomRepository, sessions *session.Table, out Deliverer, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = defaults.MaxMessageLength
	}
	if opts.MaxUsernameLength <= 0 {
		opts.MaxUsernameLength = defaults.MaxUsernameLength
	}
	if opts.MaxReactionLength <= 0 {
		opts.MaxReactionLength = defaults.MaxReactionLength
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaults.QueueSize
	}
	if opts.Auditor == nil {
		opts.Auditor = noopAuditor{}
	}
	return &Engine{
		rooms:    rooms,
		sessions: sessions,
		ids:      repositories.NewMessageIDs(),
		out:      out,
		opts:     opts,
		now:      time.Now,
		turns:    make(chan func(), opts.QueueSize),
		done:     make(chan struct{}),
	}
}

// Run processes queued turns until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case turn := <-e.turns:
			turn()
		}
	}
}

// Submit queues an inbound event. It blocks while the queue is full.
func (e *Engine) Submit(ctx context.Context, in Inbound) error {
	return e.enqueue(ctx, func() { e.Handle(in) })
}

// Snapshot returns the lobby view, read on the worker like any other turn.
func (e *Engine) Snapshot(ctx context.Context) ([]models.RoomSummary, error) {
	reply := make(chan []models.RoomSummary, 1)
	if err := e.enqueue(ctx, func() { reply <- e.rooms.Snapshot() }); err != nil {
		return nil, err
	}
	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-e.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) enqueue(ctx context.Context, turn func()) error {
	select {
	case <-e.done:
		return ErrStopped
	default:
	}
	select {
	case e.turns <- turn:
		return nil
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle runs one inbound event to completion: state changes and fan-out.
// Errors go back to the caller through an ack and never reach other connections.
func (e *Engine) Handle(in Inbound) {
	ctx, span := otel.Tracer("roomchat/dispatch").Start(context.Background(), "dispatch "+in.Type,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("chat.conn_id", in.ConnID),
			attribute.String("chat.event", in.Type),
		),
	)
	defer span.End()

	var err error
	switch in.Type {
	case EventConnect:
		e.connect(in)
	case EventDisconnect:
		e.disconnect(ctx, in)
	case EventRoomCreate:
		err = e.createRoom(ctx, in)
	case EventRoomJoin:
		err = e.joinRoom(ctx, in)
	case EventRoomLeave:
		err = e.leaveRoom(ctx, in)
	case EventChatMessage:
		err = e.sendMessage(in)
	case EventChatTyping:
		err = e.setTyping(in)
	case EventChatReaction:
		err = e.react(in)
	default:
		err = malformed("unknown event %q", in.Type)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Code(err))
		e.reject(in, err)
	}
	observability.IncDispatchEvent(in.Type, Code(err))
	observability.SetActiveRooms(e.rooms.Len())
	observability.SetActiveSessions(e.sessions.Len())
}

func (e *Engine) reject(in Inbound, err error) {
	if in.RequestID == "" {
		log.Printf("dispatch: rejected event=%s conn_id=%s: %v", in.Type, in.ConnID, err)
		return
	}
	e.ack(in, errorAck{Error: err.Error(), Code: Code(err)})
}

func (e *Engine) ack(in Inbound, payload any) {
	if in.RequestID == "" {
		return
	}
	frame, ok := encode(models.EventAck, in.RequestID, payload)
	if !ok {
		return
	}
	e.out.Deliver(in.ConnID, frame)
}

// send delivers one event to a single connection.
func (e *Engine) send(connID, eventType string, payload any) {
	frame, ok := encode(eventType, "", payload)
	if !ok {
		return
	}
	e.out.Deliver(connID, frame)
}

// broadcastRoom delivers an event to every member of the room except exclude.
func (e *Engine) broadcastRoom(roomName, exclude, eventType string, payload any) {
	members, ok := e.rooms.Members(roomName)
	if !ok {
		return
	}
	frame, ok := encode(eventType, "", payload)
	if !ok {
		return
	}
	for _, connID := range sortedConnIDs(members) {
		if connID == exclude {
			continue
		}
		e.out.Deliver(connID, frame)
	}
}

// broadcastEphemeral delivers state that is not stored anywhere, such as typing, to the
// rest of the room. Receivers keep the last value per sender.
func (e *Engine) broadcastEphemeral(roomName, sender, eventType string, payload any) {
	e.broadcastRoom(roomName, sender, eventType, payload)
}

// broadcastLobby sends the current room list to every bound connection.
func (e *Engine) broadcastLobby() {
	frame, ok := encode(models.EventRoomsList, "", e.rooms.Snapshot())
	if !ok {
		return
	}
	for _, connID := range e.sessions.ConnIDs() {
		e.out.Deliver(connID, frame)
	}
}

func encode(eventType, requestID string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("dispatch: failed to marshal %s payload: %v", eventType, err)
		return nil, false
	}
	frame, err := json.Marshal(Frame{Type: eventType, RequestID: requestID, Payload: raw})
	if err != nil {
		log.Printf("dispatch: failed to marshal %s frame: %v", eventType, err)
		return nil, false
	}
	return frame, true
}

type noopAuditor struct{}

func (noopAuditor) Emit(context.Context, string, string, string, *string) {}
