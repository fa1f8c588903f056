package routes

import (
	"github.com/gin-gonic/gin"

	"etl_manager/internal/handlers"
)

type ConnectionRoutes struct {
	connectionHandler *handlers.ConnectionHandler
}

func NewConnectionRoutes(connectionHandler *handlers.ConnectionHandler) *ConnectionRoutes {
	return &ConnectionRoutes{
		connectionHandler: connectionHandler,
	}
}

func (r *ConnectionRoutes) RegisterRoutes(router *gin.RouterGroup) {
	connections := router.Group("/connections")
	{
		connections.GET("", r.connectionHandler.ListConnections)
		connections.POST("", r.connectionHandler.CreateConnection)
		connections.POST("/test", r.connectionHandler.TestConnection)
		connections.GET("/:id", r.connectionHandler.GetConnection)
		connections.PUT("/:id", r.connectionHandler.UpdateConnection)
		connections.DELETE("/:id", r.connectionHandler.DeleteConnection)
		connections.POST("/:id/test", r.connectionHandler.TestStoredConnection)
	}
}
