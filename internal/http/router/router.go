package router

import (
	"github.com/gin-gonic/gin"

	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/http/handler"
	"complyscan.app/engine/internal/knowledge"
)

func SetupRoutes(router *gin.Engine, eng *engine.Engine, store *knowledge.Store) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		analysisHandler := handler.NewAnalysisHandler(eng, store)
		AnalysisRouter(v1.Group("/analyses"), analysisHandler)

		requirementsHandler := handler.NewRequirementsHandler(store)
		RequirementsRouter(v1.Group("/requirements"), requirementsHandler)
	}
}
