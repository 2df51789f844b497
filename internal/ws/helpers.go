package ws

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roomchat/internal/observability"
)

func newConnID() string {
	return uuid.NewString()
}

func wsPayload(event string, info ConnInfo, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "room",
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"device_id":  info.DeviceID,
			"ip":         info.IP,
			"user_agent": info.UserAgent,
		},
	}
}

// publishWSEvent reports a connection lifecycle event to the broker and the metrics.
func publishWSEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	observability.IncWSEvent(event)
	_ = observability.PublishEvent(ctx, observability.RoutingKeyWSEvents, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   wsPayload(event, info, reason),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
