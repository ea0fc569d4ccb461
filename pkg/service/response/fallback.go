package response

import (
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// fallbackConfidence is the fixed reduced confidence of deterministic
// fallback answers
const fallbackConfidence = 0.3

const (
	fallbackPermission = "I wasn't able to retrieve that information because your account isn't authorized to view it. " +
		"If you believe you should have access, please contact your school's front office."
	fallbackMissing = "I couldn't find the information needed to answer that. " +
		"A staff member can help you directly if you contact your school's front office."
	fallbackGeneric = "I ran into a problem answering that question. " +
		"Please try again, or contact your school's front office for direct help."
	fallbackUrgent = "I couldn't complete that request, and it looks time-sensitive. " +
		"I'm flagging it so district staff follow up with you as soon as possible."
)

// fallbackResponse picks a deterministic answer when every tool failed.
// The message is selected by failure category and urgency; it always
// carries a reduced fixed confidence and forces a follow-up.
func fallbackResponse(intent *model.ClassifiedIntent, execution *model.ExecutionResult) *model.GeneratedResponse {
	content := fallbackGeneric

	switch {
	case intent.Urgency.AtLeast(types.UrgencyHigh):
		content = fallbackUrgent
	case hasErrorKind(execution, types.ErrKindPermission):
		content = fallbackPermission
	case hasErrorKind(execution, types.ErrKindNotFound):
		content = fallbackMissing
	}

	return &model.GeneratedResponse{
		Content:          content,
		Confidence:       fallbackConfidence,
		RequiresFollowUp: true,
		EscalationRef:    execution.EscalationRef,
	}
}

func hasErrorKind(execution *model.ExecutionResult, kind types.ErrorKind) bool {
	for _, r := range execution.Results {
		if !r.Success && r.ErrorKind == kind {
			return true
		}
	}
	return false
}
