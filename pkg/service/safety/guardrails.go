package safety

import (
	"sort"
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// RedactionToken replaces each detected PII span during sanitization
const RedactionToken = "[REDACTED]"

// Config carries the district's configurable term lists
type Config struct {
	BlockedTerms   []string // MEDIUM severity on match
	SensitiveTerms []string // LOW severity, warn only
}

// Guardrails is the stateless safety checker applied to both user input
// and generated output. A text fails when it carries at least one HIGH
// violation or at least two MEDIUM violations.
type Guardrails struct {
	config Config
}

// New creates a Guardrails with the given term lists
func New(config Config) *Guardrails {
	return &Guardrails{config: config}
}

// CheckInbound checks user-supplied text before it enters the pipeline
func (g *Guardrails) CheckInbound(text string) *model.SafetyCheckResult {
	violations := g.baseViolations(text)
	return g.evaluate(text, violations)
}

// CheckOutbound checks generated text before it reaches the user. actor
// is the viewer; studentIDs are the students the response draws on.
func (g *Guardrails) CheckOutbound(text string, actor *model.Actor, studentIDs []string) *model.SafetyCheckResult {
	violations := g.baseViolations(text)
	violations = append(violations, checkCompliance(text, actor, studentIDs)...)
	return g.evaluate(text, violations)
}

func (g *Guardrails) baseViolations(text string) []model.Violation {
	var violations []model.Violation

	for _, m := range DetectPII(text) {
		span := m.Span
		violations = append(violations, model.Violation{
			Type:        types.ViolationPII,
			Severity:    piiSeverity(m.Type),
			Span:        &span,
			Description: "text contains " + m.Type.String(),
			Confidence:  m.Confidence,
		})
	}

	violations = append(violations, checkHarmfulContent(text)...)
	violations = append(violations, checkTermList(text, g.config.BlockedTerms, types.ViolationBlockedTerm, types.SeverityMedium)...)
	violations = append(violations, checkTermList(text, g.config.SensitiveTerms, types.ViolationSensitiveTerm, types.SeverityLow)...)
	return violations
}

// piiSeverity grades PII types: identifiers that enable identity theft
// are HIGH, contact details are MEDIUM
func piiSeverity(t types.PIIType) types.Severity {
	switch t {
	case types.PIISSN, types.PIICreditCard, types.PIIPassword:
		return types.SeverityHigh
	default:
		return types.SeverityMedium
	}
}

func (g *Guardrails) evaluate(text string, violations []model.Violation) *model.SafetyCheckResult {
	result := &model.SafetyCheckResult{
		Passed:     true,
		Violations: violations,
	}

	if result.CountBySeverity(types.SeverityHigh) >= 1 || result.CountBySeverity(types.SeverityMedium) >= 2 {
		result.Passed = false
		result.SanitizedContent = g.sanitize(text, violations)
	}
	return result
}

// sanitize redacts PII spans right to left so earlier replacements do not
// shift later offsets, then strips blocked terms
func (g *Guardrails) sanitize(text string, violations []model.Violation) string {
	var spans []model.Span
	for _, v := range violations {
		if v.Type == types.ViolationPII && v.Span != nil {
			spans = append(spans, *v.Span)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start > spans[j].Start })

	sanitized := text
	for _, s := range spans {
		if s.Start < 0 || s.End > len(sanitized) || s.Start >= s.End {
			continue
		}
		sanitized = sanitized[:s.Start] + RedactionToken + sanitized[s.End:]
	}

	for _, term := range g.config.BlockedTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		sanitized = replaceFold(sanitized, term, "")
	}

	return sanitized
}

// replaceFold removes every case-insensitive occurrence of term
func replaceFold(text, term, replacement string) string {
	lowered := strings.ToLower(text)
	target := strings.ToLower(term)

	var sb strings.Builder
	for {
		idx := strings.Index(lowered, target)
		if idx < 0 {
			sb.WriteString(text)
			return sb.String()
		}
		sb.WriteString(text[:idx])
		sb.WriteString(replacement)
		text = text[idx+len(target):]
		lowered = lowered[idx+len(target):]
	}
}
