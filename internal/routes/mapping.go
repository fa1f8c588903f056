package routes

import (
	"github.com/gin-gonic/gin"

	"etl_manager/internal/handlers"
)

type MappingRoutes struct {
	mappingHandler *handlers.MappingHandler
	selection      gin.HandlerFunc
}

func NewMappingRoutes(mappingHandler *handlers.MappingHandler, selection gin.HandlerFunc) *MappingRoutes {
	return &MappingRoutes{
		mappingHandler: mappingHandler,
		selection:      selection,
	}
}

func (r *MappingRoutes) RegisterRoutes(router *gin.RouterGroup) {
	mappings := router.Group("/mappings")
	{
		mappings.GET("", r.mappingHandler.ListMappings)
		mappings.POST("", r.mappingHandler.SaveMapping)
		mappings.GET("/lookup", r.mappingHandler.FindMapping)
		// Detail reads live source columns.
		mappings.GET("/:id", r.selection, r.mappingHandler.GetMapping)
		mappings.DELETE("/:id", r.mappingHandler.DeleteMapping)
	}
}
