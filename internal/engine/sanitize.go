package engine

import (
	"regexp"

	"complyscan.app/engine/internal/model"
)

// sourceTagPattern matches the frozen-snapshot marker at the start of a
// knowledge-base string. Examples: "Predefined: ", "Predefined:"
var sourceTagPattern = regexp.MustCompile(`^Predefined:\s*`)

// StripSourceTag removes the internal frozen-snapshot marker from a
// user-facing string. Snapshot entries are tagged so their provenance is
// visible internally, but the tag must never reach a caller.
func StripSourceTag(s string) string {
	return sourceTagPattern.ReplaceAllString(s, "")
}

// stripFindingTag returns a copy of the finding with source tags removed
// from its text and every field value.
func stripFindingTag(f model.Finding) model.Finding {
	if f.IsScalar() {
		return model.Scalar(StripSourceTag(f.Text))
	}
	fields := make(map[string]string, len(f.Fields))
	for k, v := range f.Fields {
		fields[k] = StripSourceTag(v)
	}
	return model.Structured(fields)
}

func stripFindingTags(findings []model.Finding) []model.Finding {
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		out[i] = stripFindingTag(f)
	}
	return out
}
