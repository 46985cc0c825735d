package engine

import (
	"fmt"

	"complyscan.app/engine/internal/model"
)

// MergeMode selects how model findings and rule findings are combined.
type MergeMode string

const (
	// MergeModeUnion always combines both sources, model findings first.
	MergeModeUnion MergeMode = "union"

	// MergeModeModelPriority treats a non-empty model weak-point list as
	// authoritative and suppresses rule findings entirely; rule findings
	// apply only when the model produced no weak points.
	MergeModeModelPriority MergeMode = "model_priority"
)

func (m MergeMode) Valid() bool {
	return m == MergeModeUnion || m == MergeModeModelPriority
}

// ErrInvalidMergeMode is the construction-time failure for an unset or
// unknown merge mode. It is a deployment error, not a runtime condition, so
// it is the one error class the engine surfaces hard.
var ErrInvalidMergeMode = fmt.Errorf("merge mode must be %q or %q", MergeModeUnion, MergeModeModelPriority)

// Merge combines model and rule findings under the given mode and
// deduplicates each output list. Ordering is insertion order: model findings
// first in the order the model emitted them, then rule findings in
// category-declaration order. First occurrence wins; later duplicates are
// dropped silently.
func Merge(mode MergeMode, modelWeak, modelActions, ruleWeak, ruleActions []model.Finding) (weakPoints, actions []model.Finding) {
	if mode == MergeModeModelPriority {
		if len(modelWeak) > 0 {
			return dedupe(modelWeak), dedupe(modelActions)
		}
		return dedupe(ruleWeak), dedupe(ruleActions)
	}

	weakPoints = dedupe(concat(modelWeak, ruleWeak))
	actions = dedupe(concat(modelActions, ruleActions))
	return weakPoints, actions
}

// dedupe drops later duplicates, preserving first-seen order. Equality is
// dispatched by value shape: exact string equality for scalars, field-subset
// matching for structured records (model.Finding.Duplicates).
func dedupe(findings []model.Finding) []model.Finding {
	var kept []model.Finding
	for _, candidate := range findings {
		if candidate.Empty() {
			continue
		}
		duplicate := false
		for _, existing := range kept {
			if candidate.Duplicates(existing) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func concat(a, b []model.Finding) []model.Finding {
	out := make([]model.Finding, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
