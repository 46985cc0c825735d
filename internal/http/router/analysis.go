package router

import (
	"github.com/gin-gonic/gin"

	"complyscan.app/engine/internal/http/handler"
)

func AnalysisRouter(rg *gin.RouterGroup, h *handler.AnalysisHandler) {
	rg.POST("", h.Analyze)
}
