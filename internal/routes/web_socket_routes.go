package routes

import (
	"github.com/gin-gonic/gin"
)

// WebSocketRoutes authenticates inside the handler: the token comes in the query string.
func WebSocketRoutes(r *gin.Engine, h Handlers) {
	ws := r.Group("/ws")
	{
		ws.GET("/reports", h.reports.HandleReportsWebSocket)
	}
}
