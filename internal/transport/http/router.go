package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"collectible-order/internal/service"
)

// NewRouter wires the order API. CORS is enabled only for the given origins.
func NewRouter(svc service.OrderService, health HealthFunc, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	h := &orderHandler{svc: svc}
	r.POST("/orders", h.submit)
	r.PUT("/orders/memo", h.updateMemo)
	r.GET("/orders", h.list)
	r.GET("/orders/members/:memberId", h.listByMember)
	if health != nil {
		r.GET("/health", handleHealth(health))
	}

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, codeNotFound, "route not found")
	})
	return r
}
