package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"complyscan.app/engine/common/id"
	"complyscan.app/engine/common/logger"
	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/http/dto"
	"complyscan.app/engine/internal/knowledge"
)

type AnalysisHandler struct {
	engine *engine.Engine
	store  *knowledge.Store
}

func NewAnalysisHandler(eng *engine.Engine, store *knowledge.Store) *AnalysisHandler {
	return &AnalysisHandler{
		engine: eng,
		store:  store,
	}
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid analyze request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysisID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		AnalysisID:    logger.Ptr(analysisID),
		DocumentBytes: logger.Ptr(len(req.Text)),
	})

	result := h.engine.Analyze(ctx, req.Text)
	snapshot := h.store.Snapshot()

	c.JSON(http.StatusOK, dto.AnalyzeResponse{
		AnalysisID: strconv.FormatInt(analysisID, 10),
		WeakPoints: result.WeakPoints,
		ActionPlan: result.ActionPlan,
		Score:      engine.Score(len(result.WeakPoints)),
		Stats: dto.DocumentStats{
			Characters: len(req.Text),
			Words:      len(strings.Fields(req.Text)),
		},
		Knowledge: dto.KnowledgeInfo{
			IsLiveData: snapshot.IsLiveData,
			FetchedAt:  snapshot.FetchedAt,
		},
	})
}
