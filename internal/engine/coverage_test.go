package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/model"
)

var _ = Describe("Coverage", func() {
	It("reports every category uncovered for empty text", func() {
		coverage := engine.Coverage("")
		Expect(coverage).To(HaveLen(len(model.Categories())))
		for _, category := range model.Categories() {
			Expect(coverage[category]).To(BeFalse(), string(category))
		}
	})

	It("matches keywords case-insensitively", func() {
		coverage := engine.Coverage("We obtain EXPLICIT CONSENT before processing.")
		Expect(coverage[model.CategoryConsent]).To(BeTrue())
	})

	It("matches keywords inside larger words", func() {
		// "review" appears inside "reviewing"
		coverage := engine.Coverage("Our team is reviewing procedures annually.")
		Expect(coverage[model.CategoryPolicyUpdates]).To(BeTrue())
	})

	DescribeTable("detects one category per topical mention",
		func(text string, category model.Category) {
			coverage := engine.Coverage(text)
			Expect(coverage[category]).To(BeTrue())
		},
		Entry("consent", "users must opt-in to tracking", model.CategoryConsent),
		Entry("anonymization", "all records use pseudonymization", model.CategoryAnonymization),
		Entry("policy updates", "the policy version is 3.2", model.CategoryPolicyUpdates),
		Entry("data subject rights", "we honour the right to erasure", model.CategoryDataSubjectRights),
		Entry("data subject rights via acronym", "DSAR handling is documented", model.CategoryDataSubjectRights),
		Entry("data breach", "we notify within 72 hours", model.CategoryDataBreach),
		Entry("third party", "we audit every data processor", model.CategoryThirdParty),
	)

	It("never loses coverage when text is appended", func() {
		base := "We ask for consent and use encryption."
		before := engine.Coverage(base)
		after := engine.Coverage(base + " We also run incident response drills with every vendor.")
		for _, category := range model.Categories() {
			if before[category] {
				Expect(after[category]).To(BeTrue(), string(category))
			}
		}
	})
})
