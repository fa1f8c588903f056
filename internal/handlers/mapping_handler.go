package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/middlewares"
	"etl_manager/internal/responses"
	"etl_manager/internal/services"
)

type MappingHandler struct {
	mappingService *services.MappingService
}

func NewMappingHandler(mappingService *services.MappingService) *MappingHandler {
	return &MappingHandler{
		mappingService: mappingService,
	}
}

// ListMappings handles GET /api/v1/mappings?source=&target=
func (h *MappingHandler) ListMappings(c *gin.Context) {
	list, err := h.mappingService.ListMappings(c.Request.Context(), c.Query("source"), c.Query("target"))
	if err != nil {
		failWith(c, err, "Failed to retrieve mappings")
		return
	}

	responses.Success(c, http.StatusOK, list, "Mappings retrieved successfully")
}

// SaveMapping handles POST /api/v1/mappings. A mapping_id in the body
// updates that mapping.
func (h *MappingHandler) SaveMapping(c *gin.Context) {
	var req services.SaveMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	m, err := h.mappingService.SaveMapping(c.Request.Context(), req)
	if err != nil {
		failWith(c, err, "Failed to save mapping")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"mapping_id": m.ID, "mapping": m}, "Mapping saved successfully")
}

// GetMapping handles GET /api/v1/mappings/:id
func (h *MappingHandler) GetMapping(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sel := middlewares.GetSelection(c)
	detail, err := h.mappingService.GetMappingDetail(c.Request.Context(), sel, id)
	if err != nil {
		failWith(c, err, "Mapping not found")
		return
	}

	responses.Success(c, http.StatusOK, detail, "Mapping retrieved successfully")
}

// FindMapping handles GET /api/v1/mappings/lookup?source_id=&target_id=
func (h *MappingHandler) FindMapping(c *gin.Context) {
	sourceID, err1 := strconv.ParseInt(c.Query("source_id"), 10, 64)
	targetID, err2 := strconv.ParseInt(c.Query("target_id"), 10, 64)
	if err1 != nil || err2 != nil {
		responses.Fail(c, http.StatusBadRequest, fmt.Errorf("source_id and target_id must be integers"), "Invalid query")
		return
	}

	m, err := h.mappingService.FindByTables(c.Request.Context(), sourceID, targetID)
	if err != nil {
		failWith(c, err, "Mapping not found")
		return
	}

	responses.Success(c, http.StatusOK, m, "Mapping retrieved successfully")
}

// DeleteMapping handles DELETE /api/v1/mappings/:id
func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.mappingService.DeleteMapping(c.Request.Context(), id)
	if err != nil {
		failWith(c, err, "Failed to delete mapping")
		return
	}
	if !deleted {
		responses.Fail(c, http.StatusNotFound, nil, "Mapping not found")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Mapping deleted successfully")
}
