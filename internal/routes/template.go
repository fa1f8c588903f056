package routes

import (
	"github.com/gin-gonic/gin"

	"etl_manager/internal/handlers"
)

type TemplateRoutes struct {
	templateHandler *handlers.TemplateHandler
}

func NewTemplateRoutes(templateHandler *handlers.TemplateHandler) *TemplateRoutes {
	return &TemplateRoutes{
		templateHandler: templateHandler,
	}
}

func (r *TemplateRoutes) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/templates")
	{
		templates.GET("", r.templateHandler.ListTemplates)
		templates.POST("", r.templateHandler.CreateTemplate)
		templates.GET("/:id", r.templateHandler.GetTemplate)
		templates.PUT("/:id", r.templateHandler.ReplaceTemplate)
	}
}
