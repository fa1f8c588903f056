package routes

import (
	"github.com/gin-gonic/gin"

	"etl_manager/internal/handlers"
)

type DagRoutes struct {
	dagHandler *handlers.DagHandler
}

func NewDagRoutes(dagHandler *handlers.DagHandler) *DagRoutes {
	return &DagRoutes{
		dagHandler: dagHandler,
	}
}

func (r *DagRoutes) RegisterRoutes(router *gin.RouterGroup) {
	dags := router.Group("/dags")
	{
		dags.POST("/generate", r.dagHandler.GenerateDag)
		dags.GET("/history", r.dagHandler.ListHistory)
		dags.GET("/history/:id/code", r.dagHandler.GetCode)
	}
}
