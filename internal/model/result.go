package model

// AnalysisResult is the engine's end-to-end output for one document.
// WeakPoints is the deduplicated weakness list, model findings first.
// ActionPlan is the remediation sequence, including the synthetic
// recent-changes preamble and key-requirements footer when non-empty.
type AnalysisResult struct {
	WeakPoints []Finding `json:"weak_points"`
	ActionPlan []Finding `json:"action_plan"`
}
