package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthFunc reports database statistics; "status" is "up" or "down".
type HealthFunc func(ctx context.Context) map[string]string

func handleHealth(health HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	}
}
