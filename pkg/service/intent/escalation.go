package intent

import (
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// escalationThreshold is the classifier confidence below which a message
// is routed to a human regardless of category
const escalationThreshold = 0.6

// safetyLexicon contains terms that force escalation when present in the
// user message or in what the model read out of it (reasoning, extracted
// entities), independent of the classified category. Matched as lowercase
// substrings so inflected forms ("bullying") also hit.
var safetyLexicon = []string{
	"bully",
	"harm",
	"threat",
	"abuse",
	"self-harm",
	"weapon",
	"danger",
	"afraid",
	"hurt",
	"suicide",
	"scared",
}

// applyEscalationRules layers deterministic escalation conditions on top
// of whatever the model decided. Rules only set the flag, never clear it.
func applyEscalationRules(intent *model.ClassifiedIntent) {
	if intent.Category == types.IntentEmergency {
		intent.ShouldEscalate = true
	}
	if intent.Confidence < escalationThreshold {
		intent.ShouldEscalate = true
	}
	if intent.Category == types.IntentComplaint && intent.Urgency.AtLeast(types.UrgencyHigh) {
		intent.ShouldEscalate = true
	}
	if containsSafetyTerm(safetyScanText(intent)) {
		intent.ShouldEscalate = true
	}
}

// safetyScanText joins every text surface of the classification the
// lexicon must cover: the raw query, the model's reasoning, and the
// extracted entity values
func safetyScanText(intent *model.ClassifiedIntent) string {
	parts := []string{intent.OriginalQuery, intent.Reasoning}
	for _, v := range intent.Entities {
		parts = append(parts, v)
	}
	return strings.Join(parts, "\n")
}

func containsSafetyTerm(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range safetyLexicon {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
