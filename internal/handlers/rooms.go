package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roomchat/internal/models"
)

// Lobby provides the public room list.
type Lobby interface {
	Snapshot(ctx context.Context) ([]models.RoomSummary, error)
}

// RoomHandler serves read-only room endpoints.
type RoomHandler struct {
	lobby   Lobby
	timeout time.Duration
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(lobby Lobby) *RoomHandler {
	return &RoomHandler{lobby: lobby, timeout: 2 * time.Second}
}

// ListRooms returns the same room list websocket clients receive.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	rooms, err := h.lobby.Snapshot(ctx)
	if err != nil {
		log.Printf("list rooms failed request_id=%s: %v", requestIDFromContext(c), err)
		status := http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": "room list unavailable"})
		return
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
