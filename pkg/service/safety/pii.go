package safety

import (
	"regexp"
	"sort"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// piiPattern couples a compiled matcher with its type and base confidence
type piiPattern struct {
	piiType    types.PIIType
	re         *regexp.Regexp
	confidence float64
}

var piiPatterns = []piiPattern{
	{
		piiType:    types.PIISSN,
		re:         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		confidence: 0.95,
	},
	{
		piiType:    types.PIICreditCard,
		re:         regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`),
		confidence: 0.6,
	},
	{
		piiType:    types.PIIPhone,
		re:         regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.]\d{4}|\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
		confidence: 0.85,
	},
	{
		piiType:    types.PIIEmail,
		re:         regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
		confidence: 0.95,
	},
	{
		piiType:    types.PIIAddress,
		re:         regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z][A-Za-z ]*\s(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd|Court|Ct|Way|Place|Pl)\b`),
		confidence: 0.7,
	},
	{
		piiType:    types.PIIDateOfBirth,
		re:         regexp.MustCompile(`(?i)\b(?:dob|date\s+of\s+birth|born(?:\s+on)?)[:\s]+\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`),
		confidence: 0.85,
	},
	{
		piiType:    types.PIIStudentID,
		re:         regexp.MustCompile(`(?i)\bstudent\s*(?:id|number)[:#\s]+\d{4,10}\b`),
		confidence: 0.8,
	},
	{
		piiType:    types.PIIPassword,
		re:         regexp.MustCompile(`(?i)\bpassword\s*(?:is|[:=])\s*\S+`),
		confidence: 0.9,
	},
}

// DetectPII runs the full pattern battery over text and returns every
// match with its span and confidence. Matches fully contained inside an
// earlier, higher-confidence match are dropped.
func DetectPII(text string) []model.PIIMatch {
	var matches []model.PIIMatch

	for _, p := range piiPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			confidence := p.confidence
			value := text[loc[0]:loc[1]]

			// Luhn check boosts credit card confidence; failing it keeps
			// the low base confidence
			if p.piiType == types.PIICreditCard && luhnValid(value) {
				confidence = 0.95
			}

			matches = append(matches, model.PIIMatch{
				Type:       p.piiType,
				Span:       model.Span{Start: loc[0], End: loc[1]},
				Value:      value,
				Confidence: confidence,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Span.Start != matches[j].Span.Start {
			return matches[i].Span.Start < matches[j].Span.Start
		}
		return matches[i].Confidence > matches[j].Confidence
	})

	return dedupeContained(matches)
}

// dedupeContained drops matches whose span lies inside an already kept
// span, so one region reports a single finding
func dedupeContained(matches []model.PIIMatch) []model.PIIMatch {
	kept := matches[:0]
	for _, m := range matches {
		contained := false
		for _, k := range kept {
			if m.Span.Start >= k.Span.Start && m.Span.End <= k.Span.End {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, m)
		}
	}
	return kept
}

// luhnValid checks a digit string (separators allowed) against the Luhn
// checksum
func luhnValid(s string) bool {
	var digits []int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
