package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"complyscan.app/engine/common/llm"
	"complyscan.app/engine/common/logger"
	"complyscan.app/engine/internal/model"
)

// responseShape documents the output contract requested from the backend.
// Its JSON schema is rendered into the prompt; the actual response is parsed
// tolerantly because backends routinely ignore the contract.
type responseShape struct {
	WeakPoints []string `json:"weak_points" jsonschema_description:"Specific compliance weaknesses found in the document"`
	Actions    []string `json:"actions" jsonschema_description:"Concrete remediation steps for the weaknesses"`
}

var responseSchema = llm.GenerateSchema[responseShape]()

// modelResponse is what the tolerant parser actually accepts: both arrays
// may mix scalar strings and structured records.
type modelResponse struct {
	WeakPoints []model.Finding `json:"weak_points"`
	Actions    []model.Finding `json:"actions"`
}

// truncationMarker is appended when the document is cut to fit the prompt.
const truncationMarker = "..."

// Interpreter turns a document plus snapshot context into a weakness
// judgment using an unreliable text-generating backend. It never returns an
// error: backend failures become a single synthetic weak point, and
// unparseable output becomes an empty result.
type Interpreter struct {
	backend   llm.Client
	maxChars  int
	maxTokens int
	timeout   time.Duration
}

// NewInterpreter creates an Interpreter over the given backend.
func NewInterpreter(backend llm.Client, maxChars, maxTokens int, timeout time.Duration) *Interpreter {
	if maxChars <= 0 {
		maxChars = 12000
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Interpreter{
		backend:   backend,
		maxChars:  maxChars,
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// Interpret invokes the backend once and coerces whatever comes back into
// findings. A backend error or timeout yields one synthetic weak point
// naming the failure; a response with no extractable structure yields empty
// lists. Both are ordinary outcomes for downstream stages.
func (i *Interpreter) Interpret(ctx context.Context, documentText string, snapshot *model.RequirementsSnapshot) (weakPoints, actions []model.Finding) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "engine.interpreter"})

	prompt := i.buildPrompt(documentText, snapshot)

	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	raw, err := i.backend.Complete(callCtx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   i.maxTokens,
		Temperature: llm.Temp(0.1), // low temperature for consistent judgments
		Stop:        []string{"```"},
	})
	if err != nil {
		slog.WarnContext(ctx, "model backend failed, continuing rule-only",
			"model", i.backend.Model(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		synthetic := model.Scalar(fmt.Sprintf("Model analysis unavailable (%v). Results are rule-based only.", err))
		return []model.Finding{synthetic}, nil
	}

	slog.DebugContext(ctx, "model response received",
		"model", i.backend.Model(),
		"duration_ms", time.Since(start).Milliseconds(),
		"response_length", len(raw))

	parsed := parseResponse(raw)

	slog.InfoContext(ctx, "model response interpreted",
		"weak_points", len(parsed.WeakPoints),
		"actions", len(parsed.Actions))

	return parsed.WeakPoints, parsed.Actions
}

// buildPrompt concatenates the instructional preamble, a context block from
// the snapshot, and the (possibly truncated) document.
func (i *Interpreter) buildPrompt(documentText string, snapshot *model.RequirementsSnapshot) string {
	if len(documentText) > i.maxChars {
		documentText = documentText[:i.maxChars] + truncationMarker
	}

	var sb strings.Builder
	sb.WriteString(promptPreamble)

	sb.WriteString("\n\n## Regulatory context\n")
	if snapshot.RecentChanges != "" {
		sb.WriteString("Recent changes: ")
		sb.WriteString(StripSourceTag(snapshot.RecentChanges))
		sb.WriteString("\n")
	}
	requirements := snapshot.KeyRequirements
	if len(requirements) > 5 {
		requirements = requirements[:5]
	}
	for _, req := range requirements {
		sb.WriteString("- ")
		sb.WriteString(StripSourceTag(req))
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Output contract\n")
	sb.WriteString("Respond with a strict JSON object matching this schema, and nothing else:\n")
	if schemaJSON, err := json.Marshal(responseSchema); err == nil {
		sb.Write(schemaJSON)
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Document\n\n")
	sb.WriteString(documentText)
	sb.WriteString("\n\nJSON Response:\n")

	return sb.String()
}

const promptPreamble = `You are a GDPR compliance expert. Analyze the following document for GDPR compliance issues.
Focus on these areas: consent management, data anonymization, policy updates, data subject rights, data breach procedures, and third-party data processing.

For each area where the document is lacking, provide specific weaknesses and suggested actions.
Format your response as JSON with 'weak_points' and 'actions' arrays.`

var (
	jsonSpanPattern      = regexp.MustCompile(`(?s)(\{.*\})`)
	weakSectionPattern   = regexp.MustCompile(`(?is)weak[^\n]*:(.*?)action`)
	actionSectionPattern = regexp.MustCompile(`(?is)action[^\n]*:(.*)`)
)

// parseResponse coerces raw model text into findings.
//
// Three stages, each a fallback for the one before:
//  1. Find the first balanced-looking {...} span (greedy across the whole
//     response) and decode it. A successful decode is trusted verbatim.
//  2. Heuristic section split: text between a "weak...:" line and the next
//     "action" mention becomes weak points, line by line; the text after an
//     "action...:" line becomes actions. Bulleted lines are dropped.
//  3. Nothing matched: empty result. That is a legitimate "found nothing"
//     outcome, distinct from a backend failure.
func parseResponse(raw string) modelResponse {
	if span := jsonSpanPattern.FindString(raw); span != "" {
		var parsed modelResponse
		if err := json.Unmarshal([]byte(span), &parsed); err == nil {
			return parsed
		}
	}

	var parsed modelResponse
	lower := strings.ToLower(raw)

	if strings.Contains(lower, "weak") || strings.Contains(lower, "issue") {
		if section := weakSectionPattern.FindStringSubmatch(raw); section != nil {
			parsed.WeakPoints = splitSectionLines(section[1])
		}
	}

	if strings.Contains(lower, "action") || strings.Contains(lower, "recommend") {
		if section := actionSectionPattern.FindStringSubmatch(raw); section != nil {
			parsed.Actions = splitSectionLines(section[1])
		}
	}

	return parsed
}

// splitSectionLines keeps non-empty lines that don't begin with a bullet
// marker, trimmed.
func splitSectionLines(section string) []model.Finding {
	var findings []model.Finding
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		findings = append(findings, model.Scalar(line))
	}
	return findings
}
