package usecase

import (
	"context"
	"fmt"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/service/response"
	"github.com/edmon-lab/mentor/pkg/utils/async"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
)

const (
	historyLimit    = 10
	summaryLimit    = 200
	unsafeInputMsg  = "I can't help with that message. If you or someone else is in danger, please contact your school or emergency services right away."
	piiInputMsg     = "Please don't include personal information such as Social Security numbers or account credentials in your message. Rephrase your question without it and I'll be glad to help."
	redactionNotice = "Part of this answer was removed because it contained information I can't share."
)

// AskResult is the outcome of one question-answering turn
type AskResult struct {
	Response  *model.GeneratedResponse
	Intent    *model.ClassifiedIntent
	Escalated bool
}

// Ask runs the full pipeline for one user message: inbound safety, intent
// classification, routing, tool execution, response generation, outbound
// safety, and history persistence. It returns an error only for invalid
// input; pipeline failures degrade to labeled fallback responses.
func (uc *UseCases) Ask(ctx context.Context, actor *model.Actor, query string) (*AskResult, error) {
	if actor == nil {
		return nil, ErrNilActor
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}

	logger := logging.From(ctx)

	inbound := uc.guardrails.CheckInbound(query)
	if !inbound.Passed {
		logger.Warn("inbound safety check failed",
			"actorID", actor.ID, "violations", len(inbound.Violations))
		result := uc.refuseUnsafeInput(ctx, actor, query, inbound)
		uc.persistTurn(ctx, actor, result)
		return result, nil
	}

	history, err := uc.repo.Conversation().RecentTurns(ctx, actor.DistrictID, actor.ID, historyLimit)
	if err != nil {
		// History is context, not a dependency; classify without it
		logger.Warn("failed to load conversation history", "error", err, "actorID", actor.ID)
		history = nil
	}

	classified := uc.classifier.Classify(ctx, actor, query, history)
	decision := uc.router.Route(ctx, actor, classified)

	execution := uc.executor.Execute(ctx, decision, &tool.Request{
		Actor:  actor,
		Intent: classified,
	}, tool.StrategyParallel)

	generated := uc.generator.Generate(ctx, response.Input{
		Actor:     actor,
		Intent:    classified,
		Execution: execution,
		History:   history,
	})

	outbound := uc.guardrails.CheckOutbound(generated.Content, actor, subjectStudents(execution))
	if !outbound.Passed {
		logger.Warn("outbound safety check failed, sanitizing response",
			"actorID", actor.ID, "violations", len(outbound.Violations))
		generated.Content = outbound.SanitizedContent
		if generated.Content == "" {
			generated.Content = redactionNotice
		}
	}

	result := &AskResult{
		Response:  generated,
		Intent:    classified,
		Escalated: generated.EscalationRef != "" || decision.RequiresEscalation,
	}
	uc.persistTurn(ctx, actor, result)
	return result, nil
}

// refuseUnsafeInput responds to a message that failed inbound guardrails.
// Harmful content escalates to a human with a reference ID; PII-heavy but
// benign input gets a rephrase prompt.
func (uc *UseCases) refuseUnsafeInput(ctx context.Context, actor *model.Actor, query string, check *model.SafetyCheckResult) *AskResult {
	classified := model.UnknownIntent(query, "inbound safety check failed")

	harmful := false
	for _, v := range check.Violations {
		if v.Type == types.ViolationHarmfulContent {
			harmful = true
			break
		}
	}

	if !harmful {
		return &AskResult{
			Response: &model.GeneratedResponse{
				Content:          piiInputMsg,
				Confidence:       0,
				RequiresFollowUp: true,
			},
			Intent: classified,
		}
	}

	execution := uc.executor.Execute(ctx, &model.RoutingDecision{
		RequiresEscalation: true,
		EscalationReason:   "inbound message failed safety screening",
	}, &tool.Request{
		Actor:  actor,
		Intent: classified,
	}, tool.StrategySequential)

	content := unsafeInputMsg
	if execution.EscalationRef != "" {
		content = fmt.Sprintf("%s District staff have been notified. Reference ID: %s",
			unsafeInputMsg, execution.EscalationRef)
	}

	return &AskResult{
		Response: &model.GeneratedResponse{
			Content:          content,
			Confidence:       0,
			RequiresFollowUp: true,
			EscalationRef:    execution.EscalationRef,
		},
		Intent:    classified,
		Escalated: true,
	}
}

// subjectStudents collects the students whose records the executed tools
// drew on, for outbound disclosure checks
func subjectStudents(execution *model.ExecutionResult) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, r := range execution.Results {
		id, ok := r.Metadata["student_id"].(string)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// persistTurn writes the minimal turn record off the request path
func (uc *UseCases) persistTurn(ctx context.Context, actor *model.Actor, result *AskResult) {
	summary := result.Response.Content
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}

	turn := &model.ConversationTurn{
		ActorID:         actor.ID,
		Query:           result.Intent.OriginalQuery,
		Category:        result.Intent.Category,
		Confidence:      result.Intent.Confidence,
		Urgency:         result.Intent.Urgency,
		Escalated:       result.Escalated,
		ResponseSummary: summary,
	}

	districtID := actor.DistrictID
	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.repo.Conversation().AppendTurn(ctx, districtID, turn)
		return err
	})
}
