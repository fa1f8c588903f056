package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/responses"
	"etl_manager/internal/services"
)

type DagHandler struct {
	dagService *services.DagService
}

func NewDagHandler(dagService *services.DagService) *DagHandler {
	return &DagHandler{
		dagService: dagService,
	}
}

// GenerateDag handles POST /api/v1/dags/generate
func (h *DagHandler) GenerateDag(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	generated, err := h.dagService.Generate(c.Request.Context(), req.MappingID, req.TemplateID)
	if err != nil {
		failWith(c, err, "Failed to generate DAG")
		return
	}

	responses.Success(c, http.StatusCreated, generated, "DAG generated successfully")
}

// ListHistory handles GET /api/v1/dags/history?limit=
func (h *DagHandler) ListHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.dagService.History(c.Request.Context(), limit)
	if err != nil {
		failWith(c, err, "Failed to retrieve history")
		return
	}

	responses.Success(c, http.StatusOK, list, "History retrieved successfully")
}

// GetCode handles GET /api/v1/dags/history/:id/code
func (h *DagHandler) GetCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	code, err := h.dagService.RenderedText(c.Request.Context(), id)
	if err != nil {
		failWith(c, err, "Generated code not found")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"generated_code": code}, "Generated code retrieved successfully")
}
