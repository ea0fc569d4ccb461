package model

import "github.com/edmon-lab/mentor/pkg/domain/types"

// ClassifiedIntent is the single-turn classification of a user message.
// It is ephemeral; only selected fields are persisted to conversation
// history for future context.
type ClassifiedIntent struct {
	Category               types.IntentCategory
	SecondaryCategory      types.IntentCategory // optional, IntentUnknown when absent
	Confidence             float64              // in [0,1]
	Urgency                types.Urgency
	Entities               map[string]string
	RequiresTools          bool
	RequiresStudentContext bool
	ShouldEscalate         bool
	Reasoning              string
	OriginalQuery          string
}

// UnknownIntent returns the safe default classification used when the
// classifier fails: never silently drop a message, always escalate.
func UnknownIntent(query string, reason string) *ClassifiedIntent {
	return &ClassifiedIntent{
		Category:       types.IntentUnknown,
		Confidence:     0,
		Urgency:        types.UrgencyMedium,
		Entities:       map[string]string{},
		RequiresTools:  false,
		ShouldEscalate: true,
		Reasoning:      reason,
		OriginalQuery:  query,
	}
}
