package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// harmfulPatterns match text indicating intent to harm. Any hit is a HIGH
// severity violation.
var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:kill|hurt|attack|beat up)\s+(?:you|him|her|them|myself|someone)\b`),
	regexp.MustCompile(`(?i)\bhow\s+to\s+(?:make|build|get)\s+(?:a\s+)?(?:bomb|gun|weapon|explosive)\b`),
	regexp.MustCompile(`(?i)\b(?:want|going|plan(?:ning)?)\s+to\s+(?:die|kill|end\s+(?:it|my\s+life))\b`),
	regexp.MustCompile(`(?i)\bbring(?:ing)?\s+(?:a\s+)?(?:gun|knife|weapon)\s+to\s+school\b`),
	regexp.MustCompile(`(?i)\bshoot\s+up\b`),
}

// checkHarmfulContent returns a HIGH violation for each harmful-intent
// pattern matched in text
func checkHarmfulContent(text string) []model.Violation {
	var violations []model.Violation
	for _, re := range harmfulPatterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		violations = append(violations, model.Violation{
			Type:        types.ViolationHarmfulContent,
			Severity:    types.SeverityHigh,
			Span:        &model.Span{Start: loc[0], End: loc[1]},
			Description: "text matches a harmful-intent pattern",
			Confidence:  0.9,
		})
	}
	return violations
}

// checkTermList flags each occurrence of a configured term. Blocked terms
// are MEDIUM severity; sensitive terms are LOW, warn-only.
func checkTermList(text string, terms []string, violationType types.ViolationType, severity types.Severity) []model.Violation {
	lowered := strings.ToLower(text)

	var violations []model.Violation
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		idx := strings.Index(lowered, term)
		if idx < 0 {
			continue
		}
		violations = append(violations, model.Violation{
			Type:        violationType,
			Severity:    severity,
			Span:        &model.Span{Start: idx, End: idx + len(term)},
			Description: fmt.Sprintf("text contains configured term %q", term),
			Confidence:  1.0,
		})
	}
	return violations
}
