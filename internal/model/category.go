package model

// Category is one of the fixed compliance topics the engine reasons about.
// The set is closed; every snapshot must cover all of them.
type Category string

const (
	CategoryConsent           Category = "consent"
	CategoryAnonymization     Category = "anonymization"
	CategoryPolicyUpdates     Category = "policy_updates"
	CategoryDataSubjectRights Category = "data_subject_rights"
	CategoryDataBreach        Category = "data_breach"
	CategoryThirdParty        Category = "third_party"
)

// Categories returns all categories in declaration order. Rule-derived
// findings are emitted in this order, so it is stable by contract.
func Categories() []Category {
	return []Category{
		CategoryConsent,
		CategoryAnonymization,
		CategoryPolicyUpdates,
		CategoryDataSubjectRights,
		CategoryDataBreach,
		CategoryThirdParty,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryConsent, CategoryAnonymization, CategoryPolicyUpdates,
		CategoryDataSubjectRights, CategoryDataBreach, CategoryThirdParty:
		return true
	}
	return false
}
