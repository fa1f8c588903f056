package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/middlewares"
	"etl_manager/internal/models"
	"etl_manager/internal/responses"
	"etl_manager/internal/services"
)

type MetadataHandler struct {
	metadataService *services.MetadataService
}

func NewMetadataHandler(metadataService *services.MetadataService) *MetadataHandler {
	return &MetadataHandler{
		metadataService: metadataService,
	}
}

type saveTargetRequest struct {
	TableName string                    `json:"table_name" binding:"required"`
	Columns   []models.ColumnDescriptor `json:"columns"`
}

// ListSourceTables handles GET /api/v1/metadata/sources
func (h *MetadataHandler) ListSourceTables(c *gin.Context) {
	sel := middlewares.GetSelection(c)
	tables := h.metadataService.SourceTables(c.Request.Context(), sel)
	responses.Success(c, http.StatusOK, tables, "Source tables retrieved successfully")
}

// ListSourceColumns handles GET /api/v1/metadata/sources/:table/columns
func (h *MetadataHandler) ListSourceColumns(c *gin.Context) {
	sel := middlewares.GetSelection(c)
	cols := h.metadataService.SourceColumns(c.Request.Context(), sel, c.Param("table"))
	responses.Success(c, http.StatusOK, cols, "Source columns retrieved successfully")
}

// ListTargetTables handles GET /api/v1/metadata/targets
func (h *MetadataHandler) ListTargetTables(c *gin.Context) {
	tables, err := h.metadataService.TargetTables(c.Request.Context())
	if err != nil {
		failWith(c, err, "Failed to retrieve target tables")
		return
	}

	responses.Success(c, http.StatusOK, tables, "Target tables retrieved successfully")
}

// SaveTargetTable handles POST /api/v1/metadata/targets
func (h *MetadataHandler) SaveTargetTable(c *gin.Context) {
	var req saveTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	table, err := h.metadataService.SaveTarget(c.Request.Context(), req.TableName, req.Columns)
	if err != nil {
		failWith(c, err, "Failed to save target table")
		return
	}

	responses.Success(c, http.StatusOK, table, "Target table saved successfully")
}

// CreateTargetFromSource handles POST /api/v1/metadata/targets/from-source
func (h *MetadataHandler) CreateTargetFromSource(c *gin.Context) {
	var req services.CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	sel := middlewares.GetSelection(c)
	res, err := h.metadataService.CreateTargetFromSource(c.Request.Context(), sel, req)
	if err != nil {
		failWith(c, err, "Failed to create target table")
		return
	}

	msg := "Target table created successfully"
	if !res.Applied {
		msg = "Target metadata saved; table was not created on the target database"
	}
	responses.Success(c, http.StatusCreated, res, msg)
}

// GetTargetDDL handles GET /api/v1/metadata/targets/:name/ddl
func (h *MetadataHandler) GetTargetDDL(c *gin.Context) {
	ddl, err := h.metadataService.TargetDDL(c.Request.Context(), c.Param("name"))
	if err != nil {
		failWith(c, err, "Target table not found")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"ddl": ddl}, "DDL generated successfully")
}

// DeleteTargetTable handles DELETE /api/v1/metadata/targets/:name
func (h *MetadataHandler) DeleteTargetTable(c *gin.Context) {
	if err := h.metadataService.DeleteTarget(c.Request.Context(), c.Param("name")); err != nil {
		failWith(c, err, "Failed to delete target table")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Target table deleted successfully")
}
