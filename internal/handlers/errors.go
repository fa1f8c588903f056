package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/models"
	"etl_manager/internal/render"
	"etl_manager/internal/responses"
	"etl_manager/internal/services"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case render.IsTemplateError(err), errors.Is(err, models.ErrInvalidRule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func failWith(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	responses.Fail(c, status, err, message)
}

// paramID reads a positive integer path parameter. On failure the 400 has
// already been written.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		responses.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, c.Param(name)), "Invalid id")
		return 0, false
	}
	return id, true
}
