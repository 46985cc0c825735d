package engine_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"complyscan.app/engine/common/llm"
	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/knowledge"
	"complyscan.app/engine/internal/model"
)

// fullyCoveredDocument mentions every compliance topic the keyword lexicon
// knows about.
const fullyCoveredDocument = `We collect explicit consent before any processing.
All stored records use encryption and pseudonymization.
This policy was last updated in January and is under quarterly review.
Users may exercise their right to access and right to erasure at any time.
Our data breach procedures notify the authority within 72 hours.
Every third party processor signs a data sharing agreement.`

type fixedSource struct {
	snapshot *model.RequirementsSnapshot
}

func (s *fixedSource) Snapshot() *model.RequirementsSnapshot {
	return s.snapshot
}

var _ = Describe("Engine", func() {
	var (
		backend *mockBackend
		source  *fixedSource
		ctx     context.Context
	)

	newEngine := func(b llm.Client, mode engine.MergeMode) *engine.Engine {
		eng, err := engine.New(b, source, engine.Config{
			MergeMode:      mode,
			BackendTimeout: time.Second,
		})
		Expect(err).NotTo(HaveOccurred())
		return eng
	}

	BeforeEach(func() {
		backend = &mockBackend{}
		source = &fixedSource{snapshot: knowledge.Frozen()}
		ctx = context.Background()
	})

	Describe("New", func() {
		It("rejects an unset merge mode", func() {
			_, err := engine.New(nil, source, engine.Config{})
			Expect(err).To(MatchError(engine.ErrInvalidMergeMode))
		})

		It("rejects an unknown merge mode", func() {
			_, err := engine.New(nil, source, engine.Config{MergeMode: "intersection"})
			Expect(err).To(MatchError(engine.ErrInvalidMergeMode))
		})

		It("builds a rule-only engine without a backend", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			Expect(eng.ModelBacked()).To(BeFalse())
		})
	})

	Context("rule-only analysis", func() {
		It("flags every category for an empty document", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			Expect(result.WeakPoints).To(HaveLen(len(model.Categories())))
			for _, category := range model.Categories() {
				expected := engine.StripSourceTag(source.snapshot.CommonWeakPoints[category])
				Expect(result.WeakPoints).To(ContainElement(model.Scalar(expected)), string(category))
			}
			Expect(engine.Score(len(result.WeakPoints))).To(Equal(10))
		})

		It("produces an empty result for a fully covered document", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			result := eng.Analyze(ctx, fullyCoveredDocument)

			Expect(result.WeakPoints).To(BeEmpty())
			Expect(result.ActionPlan).To(BeEmpty())
			Expect(engine.Score(len(result.WeakPoints))).To(Equal(100))
		})

		It("emits weak points in category order", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			var texts []string
			for _, wp := range result.WeakPoints {
				texts = append(texts, wp.Text)
			}
			var expected []string
			for _, category := range model.Categories() {
				expected = append(expected, engine.StripSourceTag(source.snapshot.CommonWeakPoints[category]))
			}
			Expect(texts).To(Equal(expected))
		})

		It("wraps plan entries with the preamble and footer", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			// 6 categories x 3 templates, plus preamble and footer
			Expect(result.ActionPlan).To(HaveLen(20))
			Expect(result.ActionPlan[0].Text).To(HavePrefix("Recent changes to address: "))
			Expect(result.ActionPlan[19].Text).To(HavePrefix("Ensure all key GDPR requirements are met"))
		})

		It("never leaks source tags", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			for _, wp := range result.WeakPoints {
				Expect(wp.Text).NotTo(ContainSubstring(knowledge.SourceTag))
			}
			for _, entry := range result.ActionPlan {
				Expect(entry.Text).NotTo(ContainSubstring(knowledge.SourceTag))
			}
		})

		It("is idempotent for the same document and snapshot", func() {
			eng := newEngine(nil, engine.MergeModeUnion)
			first := eng.Analyze(ctx, "we use encryption")
			second := eng.Analyze(ctx, "we use encryption")
			Expect(second).To(Equal(first))
		})
	})

	Context("with the DSAR timeline rule enabled", func() {
		newDSAREngine := func() *engine.Engine {
			eng, err := engine.New(nil, source, engine.Config{
				MergeMode:        engine.MergeModeUnion,
				DSARTimelineRule: true,
			})
			Expect(err).NotTo(HaveOccurred())
			return eng
		}

		It("flags documents that never state the 14-day deadline", func() {
			eng := newDSAREngine()
			result := eng.Analyze(ctx, fullyCoveredDocument)
			Expect(result.WeakPoints).To(HaveLen(1))
			Expect(result.WeakPoints[0].Text).To(ContainSubstring("14 days"))
		})

		It("accepts documents stating the deadline in digits or words", func() {
			eng := newDSAREngine()
			for _, doc := range []string{
				fullyCoveredDocument + "\nDSARs are answered within 14 days.",
				fullyCoveredDocument + "\nDSARs are answered within fourteen days.",
			} {
				result := eng.Analyze(ctx, doc)
				Expect(result.WeakPoints).To(BeEmpty())
			}
		})
	})

	Context("model-backed analysis", func() {
		It("unions model findings with rule findings", func() {
			backend.completeFn = func(context.Context, llm.Request) (string, error) {
				return `{"weak_points": ["Cookie banner lacks a reject option"], "actions": ["Add a reject-all button"]}`, nil
			}
			eng := newEngine(backend, engine.MergeModeUnion)
			result := eng.Analyze(ctx, fullyCoveredDocument)

			Expect(result.WeakPoints).To(Equal([]model.Finding{
				model.Scalar("Cookie banner lacks a reject option"),
			}))
			Expect(result.ActionPlan[1].Text).To(Equal("Add a reject-all button"))
		})

		It("places model findings before rule findings", func() {
			backend.completeFn = func(context.Context, llm.Request) (string, error) {
				return `{"weak_points": ["Model finding"], "actions": []}`, nil
			}
			eng := newEngine(backend, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			Expect(result.WeakPoints[0].Text).To(Equal("Model finding"))
			Expect(result.WeakPoints).To(HaveLen(1 + len(model.Categories())))
		})

		It("deduplicates model findings that restate rule findings", func() {
			duplicate := engine.StripSourceTag(source.snapshot.CommonWeakPoints[model.CategoryConsent])
			backend.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
				return `{"weak_points": ["` + duplicate + `"], "actions": []}`, nil
			}
			eng := newEngine(backend, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			count := 0
			for _, wp := range result.WeakPoints {
				if wp.Text == duplicate {
					count++
				}
			}
			Expect(count).To(Equal(1))
		})

		It("suppresses rule findings in model-priority mode", func() {
			backend.completeFn = func(context.Context, llm.Request) (string, error) {
				return `{"weak_points": ["Only finding"], "actions": ["Only action"]}`, nil
			}
			eng := newEngine(backend, engine.MergeModeModelPriority)
			result := eng.Analyze(ctx, "")

			Expect(result.WeakPoints).To(Equal([]model.Finding{model.Scalar("Only finding")}))
		})

		It("falls back to rule findings in model-priority mode when the model is silent", func() {
			backend.completeFn = func(context.Context, llm.Request) (string, error) {
				return `{"weak_points": [], "actions": []}`, nil
			}
			eng := newEngine(backend, engine.MergeModeModelPriority)
			result := eng.Analyze(ctx, "")

			Expect(result.WeakPoints).To(HaveLen(len(model.Categories())))
		})
	})

	Context("when the backend fails", func() {
		BeforeEach(func() {
			backend.completeFn = func(context.Context, llm.Request) (string, error) {
				return "", errors.New("upstream timeout")
			}
		})

		It("still returns the rule findings plus one synthetic weak point", func() {
			eng := newEngine(backend, engine.MergeModeUnion)
			result := eng.Analyze(ctx, "")

			Expect(result.WeakPoints).To(HaveLen(1 + len(model.Categories())))
			Expect(result.WeakPoints[0].Text).To(ContainSubstring("Model analysis unavailable"))
			for _, category := range model.Categories() {
				expected := engine.StripSourceTag(source.snapshot.CommonWeakPoints[category])
				Expect(result.WeakPoints).To(ContainElement(model.Scalar(expected)), string(category))
			}
		})

		It("reports only the synthetic weak point for a fully covered document", func() {
			eng := newEngine(backend, engine.MergeModeUnion)
			result := eng.Analyze(ctx, fullyCoveredDocument)

			Expect(result.WeakPoints).To(HaveLen(1))
			Expect(result.WeakPoints[0].Text).To(ContainSubstring("upstream timeout"))
		})
	})

	It("keeps multi-line footer content in a single plan entry", func() {
		eng := newEngine(nil, engine.MergeModeUnion)
		result := eng.Analyze(ctx, "")

		footer := result.ActionPlan[len(result.ActionPlan)-1]
		Expect(strings.Count(footer.Text, "\n")).To(Equal(len(source.snapshot.KeyRequirements)))
	})
})
