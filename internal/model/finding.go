package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Finding is a single weak point or action item. Models emit both bare
// strings and objects like {"area": "consent", "description": "..."}, and
// both forms are first-class: a Finding is either scalar (Text set, Fields
// nil) or structured (Fields set).
type Finding struct {
	Text   string
	Fields map[string]string
}

// Scalar builds a plain-text finding.
func Scalar(text string) Finding {
	return Finding{Text: text}
}

// Structured builds a record finding from field name/value pairs.
func Structured(fields map[string]string) Finding {
	return Finding{Fields: fields}
}

// IsScalar reports whether the finding is a bare string.
func (f Finding) IsScalar() bool {
	return f.Fields == nil
}

// Empty reports whether the finding carries no content at all.
func (f Finding) Empty() bool {
	return f.Text == "" && len(f.Fields) == 0
}

// Duplicates reports whether two findings describe the same thing.
// Scalars are duplicates under exact, case-sensitive equality. Structured
// findings are duplicates when one's field set is a subset of the other's
// with matching values. A scalar never duplicates a record.
func (f Finding) Duplicates(other Finding) bool {
	if f.IsScalar() != other.IsScalar() {
		return false
	}
	if f.IsScalar() {
		return f.Text == other.Text
	}
	return fieldsSubset(f.Fields, other.Fields) || fieldsSubset(other.Fields, f.Fields)
}

func fieldsSubset(sub, super map[string]string) bool {
	for k, v := range sub {
		if sv, ok := super[k]; !ok || sv != v {
			return false
		}
	}
	return true
}

// String renders the finding for display: the text itself for scalars,
// "area: rest" for records that carry an area, otherwise the field values
// joined in key order.
func (f Finding) String() string {
	if f.IsScalar() {
		return f.Text
	}

	area := f.Fields["area"]
	var rest []string
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		if k != "area" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if f.Fields[k] != "" {
			rest = append(rest, f.Fields[k])
		}
	}

	body := strings.Join(rest, "; ")
	if area == "" {
		return body
	}
	if body == "" {
		return area
	}
	return area + ": " + body
}

// UnmarshalJSON accepts either a JSON string or a JSON object. Object values
// that are not strings are rendered with their default formatting so a model
// emitting numbers or booleans does not break parsing.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Finding{Text: s}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("finding must be a string or an object: %w", err)
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case nil:
			fields[k] = ""
		default:
			fields[k] = fmt.Sprintf("%v", val)
		}
	}
	*f = Finding{Fields: fields}
	return nil
}

// MarshalJSON emits the form the finding was built from.
func (f Finding) MarshalJSON() ([]byte, error) {
	if f.IsScalar() {
		return json.Marshal(f.Text)
	}
	return json.Marshal(f.Fields)
}
