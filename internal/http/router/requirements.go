package router

import (
	"github.com/gin-gonic/gin"

	"complyscan.app/engine/internal/http/handler"
)

func RequirementsRouter(rg *gin.RouterGroup, h *handler.RequirementsHandler) {
	rg.GET("", h.Get)
	rg.POST("/refresh", h.Refresh)
}
