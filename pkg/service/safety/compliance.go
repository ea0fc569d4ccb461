package safety

import (
	"fmt"
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// educationRecordKeywords mark text as containing education-record
// content, which requires the viewer to be authorized for the student
// the text concerns
var educationRecordKeywords = []string{
	"grade",
	"gpa",
	"attendance",
	"absence",
	"tardy",
	"iep",
	"504 plan",
	"discipline",
	"suspension",
	"expulsion",
	"report card",
	"test score",
	"transcript",
}

// excessiveDisclosureTerms are never appropriate in a generated response
// about a student, authorized viewer or not
var excessiveDisclosureTerms = []string{
	"social security",
	"ssn",
	"home address",
	"medical",
	"therapy",
	"medication",
	"diagnosis",
}

// containsEducationRecord reports whether text references education
// records in the FERPA sense
func containsEducationRecord(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range educationRecordKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// checkCompliance verifies that outbound text about specific students is
// authorized for the viewer, and flags excessive-disclosure categories
// regardless of authorization. studentIDs are the students the response
// draws on, as accumulated during tool execution.
func checkCompliance(text string, actor *model.Actor, studentIDs []string) []model.Violation {
	var violations []model.Violation

	if containsEducationRecord(text) {
		for _, id := range studentIDs {
			if actor.CanAccessStudent(id) {
				continue
			}
			violations = append(violations, model.Violation{
				Type:     types.ViolationUnauthorizedDisclosure,
				Severity: types.SeverityHigh,
				Description: fmt.Sprintf(
					"response contains education records of student %s, which role %s is not authorized to view", id, actor.Role),
				Confidence: 1.0,
			})
		}
	}

	lowered := strings.ToLower(text)
	for _, term := range excessiveDisclosureTerms {
		idx := strings.Index(lowered, term)
		if idx < 0 {
			continue
		}
		violations = append(violations, model.Violation{
			Type:        types.ViolationExcessiveDisclosure,
			Severity:    types.SeverityMedium,
			Span:        &model.Span{Start: idx, End: idx + len(term)},
			Description: fmt.Sprintf("response touches the %q disclosure category", term),
			Confidence:  0.8,
		})
	}

	return violations
}
