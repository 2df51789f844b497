package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"roomchat/internal/dispatch"
	"roomchat/internal/observability"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

// Submitter accepts inbound events for processing.
type Submitter interface {
	Submit(ctx context.Context, in dispatch.Inbound) error
}

// Handler upgrades requests to websocket connections and pumps frames between them and the engine.
type Handler struct {
	hub       *Hub
	engine    Submitter
	readLimit int64
	pongWait  time.Duration
}

// NewHandler constructs a Handler. Frames larger than readLimit bytes close the connection.
func NewHandler(hub *Hub, engine Submitter, readLimit int64) *Handler {
	return &Handler{hub: hub, engine: engine, readLimit: readLimit, pongWait: pongWait}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and serves it until either side closes.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("roomchat/ws").Start(c.Request.Context(), "ws.handshake")
	traceID := span.SpanContext().TraceID().String()
	conn, err := upgrader.Upgrade(c.Writer, c.Request.WithContext(ctx), nil)
	span.End()
	if err != nil {
		return
	}

	client := observability.ClientInfoFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		DeviceID:    client.DeviceID,
		IP:          client.IP,
		RequestID:   client.RequestID,
		UserAgent:   client.UserAgent,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	cl := h.hub.register(info)
	observability.IncWSActive()
	publishWSEvent(context.Background(), "ws_connect", info, "")

	go h.writePump(conn, cl)
	h.readPump(conn, cl)
}

func (h *Handler) readPump(conn *websocket.Conn, cl *client) {
	ctx := context.Background()
	var closeReason string
	defer func() {
		h.hub.unregister(cl.info.ConnID)
		if err := h.engine.Submit(ctx, dispatch.Inbound{ConnID: cl.info.ConnID, Type: dispatch.EventDisconnect}); err != nil {
			log.Printf("websocket disconnect not dispatched conn_id=%s: %v", cl.info.ConnID, err)
		}
		observability.DecWSActive()
		publishWSEvent(ctx, "ws_disconnect", cl.info, closeReason)
		conn.Close()
	}()

	if err := h.engine.Submit(ctx, dispatch.Inbound{ConnID: cl.info.ConnID, Type: dispatch.EventConnect}); err != nil {
		closeReason = err.Error()
		return
	}

	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				publishWSEvent(ctx, "ws_error", cl.info, closeReason)
			}
			return
		}

		var frame dispatch.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.rejectFrame(cl, "", fmt.Errorf("%w: %v", dispatch.ErrMalformedEvent, err))
			continue
		}
		if frame.Type == dispatch.EventConnect || frame.Type == dispatch.EventDisconnect {
			h.rejectFrame(cl, frame.RequestID, fmt.Errorf("%w: %q is reserved", dispatch.ErrMalformedEvent, frame.Type))
			continue
		}
		if err := h.engine.Submit(ctx, dispatch.FromFrame(cl.info.ConnID, frame)); err != nil {
			closeReason = err.Error()
			return
		}
	}
}

func (h *Handler) rejectFrame(cl *client, requestID string, err error) {
	log.Printf("websocket frame rejected conn_id=%s: %v", cl.info.ConnID, err)
	if frame, ok := dispatch.ErrorFrame(requestID, err); ok {
		h.hub.Deliver(cl.info.ConnID, frame)
	}
}

func (h *Handler) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker((h.pongWait * 9) / 10)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Printf("websocket write error: %v", err)
					publishWSEvent(context.Background(), "ws_error", cl.info, err.Error())
				}
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
