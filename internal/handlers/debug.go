package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Auditor records audit log lines.
type Auditor interface {
	Emit(ctx context.Context, level, text, requestID string, actor *string)
}

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRoutes, auditor Auditor, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if auditor == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		auditor.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), actorFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
