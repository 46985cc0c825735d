package engine

import (
	"strings"

	"complyscan.app/engine/internal/model"
)

const footerHeader = "Ensure all key GDPR requirements are met, including:"

// Assemble wraps the merged actions into the final plan: a synthetic
// recent-changes preamble in front, the actions themselves, and one
// synthetic footer entry listing the key requirements. An empty action list
// stays empty — no synthetic entries, full compliance. Source tags are
// stripped from everything user-facing; synthetic entries are never subject
// to deduplication.
func Assemble(actions []model.Finding, snapshot *model.RequirementsSnapshot) []model.Finding {
	if len(actions) == 0 {
		return nil
	}

	plan := make([]model.Finding, 0, len(actions)+2)

	if snapshot.RecentChanges != "" {
		plan = append(plan, model.Scalar("Recent changes to address: "+StripSourceTag(snapshot.RecentChanges)))
	}

	plan = append(plan, stripFindingTags(actions)...)

	if len(snapshot.KeyRequirements) > 0 {
		var sb strings.Builder
		sb.WriteString(footerHeader)
		for _, req := range snapshot.KeyRequirements {
			sb.WriteString("\n- ")
			sb.WriteString(StripSourceTag(req))
		}
		plan = append(plan, model.Scalar(sb.String()))
	}

	return plan
}
