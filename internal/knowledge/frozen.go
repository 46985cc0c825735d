package knowledge

import (
	"time"

	"complyscan.app/engine/internal/model"
)

// SourceTag marks snapshot text that came from the compiled-in fallback
// rather than a live fetch. It is stripped from all user-facing output at
// assembly time.
const SourceTag = "Predefined: "

// Frozen returns the compiled-in knowledge base used whenever the live
// source is unreachable or returns an incomplete snapshot. Every category
// is covered, so downstream lookups can fail closed onto it.
func Frozen() *model.RequirementsSnapshot {
	return &model.RequirementsSnapshot{
		IsLiveData: false,
		FetchedAt:  time.Now().UTC(),
		RecentChanges: "As of 2025, GDPR regulations emphasize stricter data anonymization practices, " +
			"and data subject access requests (DSARs) must be processed within 14 days instead of the previous 30.",
		KeyRequirements: []string{
			SourceTag + "Data Minimization: Collect only the necessary data.",
			SourceTag + "Data Subject Rights: Ensure users can easily access, delete, and transfer their data.",
			SourceTag + "Data Breach Notification: Notify authorities within 72 hours of a breach.",
			SourceTag + "Accountability and Record Keeping: Maintain records of all processing activities.",
			SourceTag + "Lawful Basis: Process data only with a valid legal basis.",
			SourceTag + "Transparency: Provide clear privacy notices about data usage.",
		},
		CommonWeakPoints: map[model.Category]string{
			model.CategoryConsent:           SourceTag + "Lack of clear consent management practices.",
			model.CategoryAnonymization:     SourceTag + "Insufficient data anonymization for sensitive data.",
			model.CategoryPolicyUpdates:     SourceTag + "Failure to update privacy policies regularly.",
			model.CategoryDataSubjectRights: SourceTag + "Inadequate mechanisms for users to exercise their rights.",
			model.CategoryDataBreach:        SourceTag + "Insufficient data breach detection and notification procedures.",
			model.CategoryThirdParty:        SourceTag + "Lack of oversight for third-party data processors.",
		},
		ActionTemplates: map[model.Category][]string{
			model.CategoryConsent: {
				SourceTag + "Implement explicit opt-in consent mechanisms for all data collection points.",
				SourceTag + "Ensure consent requests are presented clearly and separately from other terms.",
				SourceTag + "Provide easy ways for users to withdraw consent at any time.",
			},
			model.CategoryAnonymization: {
				SourceTag + "Implement robust anonymization techniques for all sensitive data.",
				SourceTag + "Conduct a data inventory to identify all places where personal data is stored.",
				SourceTag + "Use encryption for data both at rest and in transit.",
			},
			model.CategoryPolicyUpdates: {
				SourceTag + "Establish a quarterly schedule for reviewing and updating privacy policies.",
				SourceTag + "Create a change management process for documenting updates to data practices.",
				SourceTag + "Implement a version control system for privacy documentation.",
			},
			model.CategoryDataSubjectRights: {
				SourceTag + "Develop a streamlined process for handling data subject access requests.",
				SourceTag + "Create self-service portals for users to access, modify, and delete their data.",
				SourceTag + "Ensure all data subject requests are processed within 14 days.",
			},
			model.CategoryDataBreach: {
				SourceTag + "Implement automated breach detection systems.",
				SourceTag + "Create a response team and clear procedures for handling data breaches.",
				SourceTag + "Establish templates for notifying authorities and affected users.",
			},
			model.CategoryThirdParty: {
				SourceTag + "Audit all third-party data processors for GDPR compliance.",
				SourceTag + "Update data processing agreements with all vendors.",
				SourceTag + "Implement regular compliance checks for third-party services.",
			},
		},
	}
}
