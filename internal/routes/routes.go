package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"etl_manager/internal/handlers"
	"etl_manager/internal/middlewares"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Connection *handlers.ConnectionHandler
	Metadata   *handlers.MetadataHandler
	Mapping    *handlers.MappingHandler
	Template   *handlers.TemplateHandler
	Dag        *handlers.DagHandler
	// Selection resolves the active source/target pair for the routes that
	// touch live databases.
	Selection middlewares.SelectionResolver
}

func RegisterRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api/v1")
	selection := middlewares.ResolveSelection(h.Selection)

	NewConnectionRoutes(h.Connection).RegisterRoutes(api)
	NewMetadataRoutes(h.Metadata, selection).RegisterRoutes(api)
	NewMappingRoutes(h.Mapping, selection).RegisterRoutes(api)
	NewTemplateRoutes(h.Template).RegisterRoutes(api)
	NewDagRoutes(h.Dag).RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
