package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"etl_manager/internal/models"
	"etl_manager/internal/responses"
)

const selectionKey = "selection"

type SelectionResolver interface {
	Selection(ctx context.Context) (models.Selection, error)
}

// ResolveSelection looks up the active source and target connections once
// and stores them on the context for the handlers.
func ResolveSelection(r SelectionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sel, err := r.Selection(c.Request.Context())
		if err != nil {
			responses.Abort(c, http.StatusInternalServerError, err, "Failed to resolve active connections")
			return
		}

		c.Set(selectionKey, sel)
		c.Next()
	}
}

// GetSelection returns the resolved selection, or an empty one when the
// middleware did not run.
func GetSelection(c *gin.Context) models.Selection {
	v, ok := c.Get(selectionKey)
	if !ok {
		return models.Selection{}
	}
	sel, _ := v.(models.Selection)
	return sel
}
