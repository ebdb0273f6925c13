package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the command center routes
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	api := router.Group("/api/v1")
	{
		api.GET("/operations-command-center", handlers.GetSnapshot())
	}
}
