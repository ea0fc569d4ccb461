package model

import "github.com/edmon-lab/mentor/pkg/domain/types"

// Span marks a half-open [Start,End) byte range inside checked text
type Span struct {
	Start int
	End   int
}

// PIIMatch is one detected span of personally identifiable information
type PIIMatch struct {
	Type       types.PIIType
	Span       Span
	Value      string
	Confidence float64
}

// Violation is one safety finding in checked text
type Violation struct {
	Type        types.ViolationType
	Severity    types.Severity
	Span        *Span // nil when the violation has no single position
	Description string
	Confidence  float64
}

// SafetyCheckResult is the outcome of running guardrails over a text.
// SanitizedContent is populated only when Passed is false.
type SafetyCheckResult struct {
	Passed           bool
	Violations       []Violation
	SanitizedContent string
}

// CountBySeverity returns the number of violations at the given severity
func (r *SafetyCheckResult) CountBySeverity(s types.Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}
