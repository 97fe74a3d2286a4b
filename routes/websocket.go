package routes

import (
	"github.com/gin-gonic/gin"

	"owlistic-notes/blocknotes/services"
)

// RegisterWebSocketRoutes exposes the flush status stream.
func RegisterWebSocketRoutes(router *gin.Engine, hub *services.StatusHub) {
	router.GET("/api/v1/ws", func(c *gin.Context) {
		hub.HandleWebSocket(c.Writer, c.Request)
	})
}
