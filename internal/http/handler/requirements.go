package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complyscan.app/engine/internal/http/dto"
	"complyscan.app/engine/internal/knowledge"
)

type RequirementsHandler struct {
	store *knowledge.Store
}

func NewRequirementsHandler(store *knowledge.Store) *RequirementsHandler {
	return &RequirementsHandler{store: store}
}

// Get returns the requirements snapshot the engine is currently analyzing with.
func (h *RequirementsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// Refresh forces a live fetch. The previous snapshot stays in place when the
// source is unreachable, so this never degrades the serving state.
func (h *RequirementsHandler) Refresh(c *gin.Context) {
	updated := h.store.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, dto.RefreshResponse{Updated: updated})
}
