package model

import "time"

// RequirementsSnapshot is the regulatory knowledge base at a point in time.
// A snapshot is immutable once published; the knowledge store replaces the
// whole value on refresh rather than mutating fields in place.
type RequirementsSnapshot struct {
	RecentChanges    string                `json:"recent_changes"`
	KeyRequirements  []string              `json:"key_requirements"`
	CommonWeakPoints map[Category]string   `json:"common_weak_points"`
	ActionTemplates  map[Category][]string `json:"action_templates"`
	IsLiveData       bool                  `json:"is_live_data"`
	FetchedAt        time.Time             `json:"fetched_at"`
}

// WeakPointFor returns the default weakness description for a category.
// Missing entries fall back to the given defaults so a partially scraped
// snapshot can never surface a lookup failure to a caller.
func (s *RequirementsSnapshot) WeakPointFor(c Category, defaults *RequirementsSnapshot) string {
	if wp, ok := s.CommonWeakPoints[c]; ok && wp != "" {
		return wp
	}
	return defaults.CommonWeakPoints[c]
}

// TemplatesFor returns the remediation steps for a category, in template
// order, falling back to the given defaults when the category is absent.
func (s *RequirementsSnapshot) TemplatesFor(c Category, defaults *RequirementsSnapshot) []string {
	if ts, ok := s.ActionTemplates[c]; ok && len(ts) > 0 {
		return ts
	}
	return defaults.ActionTemplates[c]
}

// Complete reports whether the snapshot has an entry for every category in
// both per-category maps and a non-empty requirements list.
func (s *RequirementsSnapshot) Complete() bool {
	if len(s.KeyRequirements) == 0 {
		return false
	}
	for _, c := range Categories() {
		if s.CommonWeakPoints[c] == "" {
			return false
		}
		if len(s.ActionTemplates[c]) == 0 {
			return false
		}
	}
	return true
}
