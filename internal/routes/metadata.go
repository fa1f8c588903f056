package routes

import (
	"github.com/gin-gonic/gin"

	"etl_manager/internal/handlers"
)

type MetadataRoutes struct {
	metadataHandler *handlers.MetadataHandler
	selection       gin.HandlerFunc
}

func NewMetadataRoutes(metadataHandler *handlers.MetadataHandler, selection gin.HandlerFunc) *MetadataRoutes {
	return &MetadataRoutes{
		metadataHandler: metadataHandler,
		selection:       selection,
	}
}

func (r *MetadataRoutes) RegisterRoutes(router *gin.RouterGroup) {
	metadata := router.Group("/metadata")
	{
		sources := metadata.Group("/sources")
		sources.Use(r.selection)
		sources.GET("", r.metadataHandler.ListSourceTables)
		sources.GET("/:table/columns", r.metadataHandler.ListSourceColumns)

		targets := metadata.Group("/targets")
		targets.GET("", r.metadataHandler.ListTargetTables)
		targets.POST("", r.metadataHandler.SaveTargetTable)
		targets.POST("/from-source", r.selection, r.metadataHandler.CreateTargetFromSource)
		targets.GET("/:name/ddl", r.metadataHandler.GetTargetDDL)
		targets.DELETE("/:name", r.metadataHandler.DeleteTargetTable)
	}
}
