package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so analysis-scoped
// context (analysis_id, document size) appears in every log statement without
// being threaded through call signatures.
type LogFields struct {
	AnalysisID    *int64  // ID of the analysis being processed
	DocumentBytes *int    // Size of the document under analysis
	MergeMode     *string // Active merge policy for this analysis
	Component     string  // Component name (e.g., "engine.interpreter")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, updates LogFields) LogFields {
	result := existing

	if updates.AnalysisID != nil {
		result.AnalysisID = updates.AnalysisID
	}
	if updates.DocumentBytes != nil {
		result.DocumentBytes = updates.DocumentBytes
	}
	if updates.MergeMode != nil {
		result.MergeMode = updates.MergeMode
	}
	if updates.Component != "" {
		result.Component = updates.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{AnalysisID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long strings like prompts or raw
// model responses.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
