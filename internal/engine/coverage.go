package engine

import (
	"strings"

	"complyscan.app/engine/internal/model"
)

// complianceKeywords is the compiled-in lexicon, one list per category. A
// category counts as covered when any of its keywords appears as a
// case-insensitive substring of the document. Substring matching is
// deliberate: a match inside an unrelated word still counts as coverage,
// trading false negatives for false positives.
var complianceKeywords = map[model.Category][]string{
	model.CategoryConsent: {
		"explicit consent", "opt-in", "consent form", "consent management",
		"consent", "opt out", "permission",
	},
	model.CategoryAnonymization: {
		"anonymization", "pseudonymization", "encryption", "data protection",
		"personal data security", "data minimization", "anonymize",
	},
	model.CategoryPolicyUpdates: {
		"policy update", "regular review", "policy version", "last updated",
		"policy change", "notification of changes", "review",
	},
	model.CategoryDataSubjectRights: {
		"right to access", "right to erasure", "right to be forgotten",
		"data portability", "right to object", "dsar", "subject access request",
		"access rights", "user rights",
	},
	model.CategoryDataBreach: {
		"data breach", "security incident", "breach notification", "72 hours",
		"breach detection", "incident response", "security breach",
	},
	model.CategoryThirdParty: {
		"third party", "data processor", "vendor", "data transfer",
		"international transfer", "data sharing agreement", "third-party",
	},
}

// dsarTimelineMarkers are the phrases whose absence triggers the optional
// DSAR timeline rule.
var dsarTimelineMarkers = []string{"14 day", "fourteen day"}

const (
	dsarTimelineWeakPoint = "Missing updated timeline for Data Subject Access Requests (now 14 days)"
	dsarTimelineAction    = "Update policy to reflect the new 14-day timeline for responding to DSARs"
)

// Coverage reports, per category, whether the document mentions that
// compliance topic. Pure and total: empty text yields all false.
func Coverage(documentText string) map[model.Category]bool {
	lower := strings.ToLower(documentText)
	results := make(map[model.Category]bool, len(complianceKeywords))

	for category, keywords := range complianceKeywords {
		covered := false
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				covered = true
				break
			}
		}
		results[category] = covered
	}
	return results
}

// ruleFindings derives rule-based weak points and action candidates from a
// coverage map: every uncovered category contributes its snapshot weak point
// and all of its action templates, in category-declaration order. With the
// DSAR timeline rule enabled, a document that never states the 14-day
// deadline gets one extra weak point and action.
func ruleFindings(documentText string, coverage map[model.Category]bool, snapshot, defaults *model.RequirementsSnapshot, dsarRule bool) (weakPoints, actions []model.Finding) {
	for _, category := range model.Categories() {
		if coverage[category] {
			continue
		}
		weakPoints = append(weakPoints, model.Scalar(snapshot.WeakPointFor(category, defaults)))
		for _, action := range snapshot.TemplatesFor(category, defaults) {
			actions = append(actions, model.Scalar(action))
		}
	}

	if dsarRule && !mentionsDSARTimeline(documentText) {
		weakPoints = append(weakPoints, model.Scalar(dsarTimelineWeakPoint))
		actions = append(actions, model.Scalar(dsarTimelineAction))
	}

	return weakPoints, actions
}

func mentionsDSARTimeline(documentText string) bool {
	lower := strings.ToLower(documentText)
	for _, marker := range dsarTimelineMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
