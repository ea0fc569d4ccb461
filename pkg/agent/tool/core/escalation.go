package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	slackService "github.com/edmon-lab/mentor/pkg/service/slack"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/google/uuid"
)

// escalationTool raises a human-follow-up request. It always succeeds
// from the pipeline's point of view: a notification failure is logged and
// the reference ID is still issued, so the user never loses their ticket.
type escalationTool struct {
	notifier slackService.Service
}

func (t *escalationTool) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        tool.EscalationToolName,
		Description: "Escalates the conversation to district staff for human follow-up and returns a reference ID",
		RequiredPermissions: []types.Permission{
			types.PermissionEscalate,
		},
		HandledIntents: []types.IntentCategory{
			types.IntentEmergency,
			types.IntentComplaint,
			types.IntentUnknown,
		},
		Timeout: 10 * time.Second,
	}
}

func (t *escalationTool) Run(ctx context.Context, req *tool.Request) (*model.ToolResult, error) {
	referenceID := newReferenceID()

	reason := "escalation requested"
	if r, ok := req.Params["reason"].(string); ok && r != "" {
		reason = r
	}

	if t.notifier != nil {
		err := t.notifier.NotifyEscalation(ctx, &slackService.Escalation{
			ReferenceID: referenceID,
			DistrictID:  req.Actor.DistrictID,
			ActorID:     req.Actor.ID,
			Role:        req.Actor.Role,
			Category:    req.Intent.Category,
			Urgency:     req.Intent.Urgency,
			Query:       req.Intent.OriginalQuery,
			Reason:      reason,
		})
		if err != nil {
			logging.From(ctx).Error("failed to notify escalation channel",
				"error", err, "referenceID", referenceID)
		}
	}

	return &model.ToolResult{
		ToolName: tool.EscalationToolName,
		Success:  true,
		Content: fmt.Sprintf(
			"This conversation has been escalated to district staff for follow-up. Reference ID: %s", referenceID),
		Confidence:       1.0,
		HasConfidence:    true,
		RequiresFollowUp: true,
		Metadata:         map[string]any{"reference_id": referenceID},
	}, nil
}

// newReferenceID issues a short, user-readable escalation reference
func newReferenceID() string {
	id := strings.ToUpper(uuid.New().String())
	return "ESC-" + id[:8]
}
