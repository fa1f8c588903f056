package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/models"
	"etl_manager/internal/responses"
	"etl_manager/internal/services"
)

type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

type testResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListConnections handles GET /api/v1/connections
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	conns, err := h.connectionService.List(c.Request.Context())
	if err != nil {
		failWith(c, err, "Failed to retrieve connections")
		return
	}

	responses.Success(c, http.StatusOK, conns, "Connections retrieved successfully")
}

// CreateConnection handles POST /api/v1/connections
func (h *ConnectionHandler) CreateConnection(c *gin.Context) {
	var req models.Connection
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.ID = 0
	req.Prepare()

	if err := h.connectionService.Create(c.Request.Context(), &req); err != nil {
		failWith(c, err, "Failed to create connection")
		return
	}

	responses.Success(c, http.StatusCreated, req.Redacted(), "Connection created successfully")
}

// GetConnection handles GET /api/v1/connections/:id
func (h *ConnectionHandler) GetConnection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	conn, err := h.connectionService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err, "Connection not found")
		return
	}

	responses.Success(c, http.StatusOK, conn.Redacted(), "Connection retrieved successfully")
}

// UpdateConnection handles PUT /api/v1/connections/:id
func (h *ConnectionHandler) UpdateConnection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.Connection
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.Prepare()

	if err := h.connectionService.Update(c.Request.Context(), id, &req); err != nil {
		failWith(c, err, "Failed to update connection")
		return
	}

	responses.Success(c, http.StatusOK, req.Redacted(), "Connection updated successfully")
}

// DeleteConnection handles DELETE /api/v1/connections/:id
func (h *ConnectionHandler) DeleteConnection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.connectionService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, err, "Failed to delete connection")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Connection deleted successfully")
}

// TestConnection handles POST /api/v1/connections/test with an unsaved
// profile in the body.
func (h *ConnectionHandler) TestConnection(c *gin.Context) {
	var req models.Connection
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.Prepare()

	ok, msg := h.connectionService.Test(c.Request.Context(), req)
	responses.Success(c, http.StatusOK, testResult{Success: ok, Message: msg}, msg)
}

// TestStoredConnection handles POST /api/v1/connections/:id/test
func (h *ConnectionHandler) TestStoredConnection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	conn, err := h.connectionService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err, "Connection not found")
		return
	}

	success, msg := h.connectionService.Test(c.Request.Context(), *conn)
	responses.Success(c, http.StatusOK, testResult{Success: success, Message: msg}, msg)
}
