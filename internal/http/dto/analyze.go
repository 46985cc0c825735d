package dto

import (
	"time"

	"complyscan.app/engine/internal/model"
)

// AnalyzeRequest is the inbound payload for a document analysis. The caller
// is responsible for upstream format extraction; Text is already plain text.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnalyzeResponse is the engine's full answer for one document.
type AnalyzeResponse struct {
	AnalysisID string          `json:"analysis_id"`
	WeakPoints []model.Finding `json:"weak_points"`
	ActionPlan []model.Finding `json:"action_plan"`
	Score      int             `json:"score"`
	Stats      DocumentStats   `json:"stats"`
	Knowledge  KnowledgeInfo   `json:"knowledge"`
}

// DocumentStats carries basic size metrics for display.
type DocumentStats struct {
	Characters int `json:"characters"`
	Words      int `json:"words"`
}

// KnowledgeInfo describes which knowledge base produced the analysis.
type KnowledgeInfo struct {
	IsLiveData bool      `json:"is_live_data"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// RefreshResponse reports whether a requirements refresh changed anything.
type RefreshResponse struct {
	Updated bool `json:"updated"`
}
