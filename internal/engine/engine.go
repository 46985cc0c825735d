package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"complyscan.app/engine/common/llm"
	"complyscan.app/engine/common/logger"
	"complyscan.app/engine/internal/knowledge"
	"complyscan.app/engine/internal/model"
)

// SnapshotSource provides the knowledge base for an analysis. Each analysis
// reads the snapshot exactly once, so a concurrent refresh can never tear a
// result.
type SnapshotSource interface {
	Snapshot() *model.RequirementsSnapshot
}

// Config holds the engine's analysis policy. MergeMode is required; the
// rest have working defaults.
type Config struct {
	MergeMode        MergeMode
	MaxDocumentChars int
	MaxTokens        int
	BackendTimeout   time.Duration
	DSARTimelineRule bool
}

// Engine is the compliance analysis pipeline: rule-based coverage and model
// interpretation in parallel, merged, deduplicated, and assembled into a
// weak-point list and an action plan.
type Engine struct {
	knowledge   SnapshotSource
	interpreter *Interpreter
	defaults    *model.RequirementsSnapshot
	mode        MergeMode
	dsarRule    bool
}

// New creates an Engine. backend may be nil, in which case analyses are
// rule-only. An unset or unknown merge mode is a configuration error and
// fails construction; every runtime condition after this point degrades
// instead of failing.
func New(backend llm.Client, source SnapshotSource, cfg Config) (*Engine, error) {
	if !cfg.MergeMode.Valid() {
		return nil, ErrInvalidMergeMode
	}

	var interpreter *Interpreter
	if backend != nil {
		interpreter = NewInterpreter(backend, cfg.MaxDocumentChars, cfg.MaxTokens, cfg.BackendTimeout)
	}

	return &Engine{
		knowledge:   source,
		interpreter: interpreter,
		defaults:    knowledge.Frozen(),
		mode:        cfg.MergeMode,
		dsarRule:    cfg.DSARTimelineRule,
	}, nil
}

// MergeMode returns the active merge policy.
func (e *Engine) MergeMode() MergeMode {
	return e.mode
}

// ModelBacked reports whether a model backend is configured.
func (e *Engine) ModelBacked() bool {
	return e.interpreter != nil
}

// Analyze runs the full pipeline over one document. It always produces a
// result: backend failures surface as a synthetic weak point and knowledge
// degradation is invisible here. Repeated calls with the same document and
// snapshot are idempotent.
func (e *Engine) Analyze(ctx context.Context, documentText string) *model.AnalysisResult {
	start := time.Now()
	mode := string(e.mode)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DocumentBytes: logger.Ptr(len(documentText)),
		MergeMode:     &mode,
		Component:     "engine",
	})

	sc := logger.StartSpan(ctx, "engine.analyze")
	defer sc.End()
	ctx = sc.Context()

	// One snapshot for the whole analysis, even if a refresh lands mid-flight.
	snapshot := e.knowledge.Snapshot()

	var (
		ruleWeak, ruleActions   []model.Finding
		modelWeak, modelActions []model.Finding
		wg                      sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		coverage := Coverage(documentText)
		ruleWeak, ruleActions = ruleFindings(documentText, coverage, snapshot, e.defaults, e.dsarRule)
	}()

	if e.interpreter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			modelWeak, modelActions = e.interpreter.Interpret(ctx, documentText, snapshot)
		}()
	}

	wg.Wait()

	weakPoints, actions := Merge(e.mode, modelWeak, modelActions, ruleWeak, ruleActions)

	result := &model.AnalysisResult{
		WeakPoints: stripFindingTags(weakPoints),
		ActionPlan: Assemble(actions, snapshot),
	}

	slog.InfoContext(ctx, "analysis completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"weak_points", len(result.WeakPoints),
		"plan_entries", len(result.ActionPlan),
		"live_knowledge", snapshot.IsLiveData)

	return result
}
