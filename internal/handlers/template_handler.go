package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/models"
	"etl_manager/internal/responses"
	"etl_manager/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// ListTemplates handles GET /api/v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	list, err := h.templateService.List(c.Request.Context())
	if err != nil {
		failWith(c, err, "Failed to retrieve templates")
		return
	}

	responses.Success(c, http.StatusOK, list, "Templates retrieved successfully")
}

// CreateTemplate handles POST /api/v1/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req models.Template
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.ID = 0

	if err := h.templateService.Create(c.Request.Context(), &req); err != nil {
		failWith(c, err, "Failed to create template")
		return
	}

	responses.Success(c, http.StatusCreated, req, "Template created successfully")
}

// GetTemplate handles GET /api/v1/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	t, err := h.templateService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err, "Template not found")
		return
	}

	responses.Success(c, http.StatusOK, t, "Template retrieved successfully")
}

// ReplaceTemplate handles PUT /api/v1/templates/:id
func (h *TemplateHandler) ReplaceTemplate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.Template
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.templateService.Replace(c.Request.Context(), id, &req); err != nil {
		failWith(c, err, "Failed to update template")
		return
	}

	responses.Success(c, http.StatusOK, req, "Template updated successfully")
}
