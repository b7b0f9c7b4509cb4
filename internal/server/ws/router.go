package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/ws"

	"github.com/dmitrijs2005/chatshield/internal/logging"
)

// NewRouter wires the upgrade endpoint and a liveness probe.
func NewRouter(h *Handler, log logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", h.upgrade)

	return r
}

func (h *Handler) upgrade(c *gin.Context) {
	conn, _, _, err := ws.UpgradeHTTP(c.Request, c.Writer)
	if err != nil {
		h.log.Warn(c.Request.Context(), "upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}
	h.Serve(c.Request.Context(), conn)
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	log = log.With("module", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
