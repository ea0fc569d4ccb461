package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/gollem"
)

// EscalationToolName is the reserved name of the escalation tool; the
// executor appends it whenever routing flags escalation
const EscalationToolName = "escalation"

// RouterConfig tunes routing thresholds
type RouterConfig struct {
	HardConfidenceFloor   float64 // below this, short-circuit to escalation only
	SimpleRouteConfidence float64 // at or above this, skip model-assisted selection
	SelectionCap          int     // maximum tools per routing decision
	FallbackFloor         float64 // heuristic fallback forces escalation below this
}

// DefaultRouterConfig returns the default routing configuration
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		HardConfidenceFloor:   0.3,
		SimpleRouteConfidence: 0.8,
		SelectionCap:          3,
		FallbackFloor:         0.5,
	}
}

// Router turns a classified intent into an ordered tool invocation plan.
// Mandatory escalation triggers short-circuit everything else; clear
// cases route directly; ambiguous cases go through a model-assisted
// selector with a deterministic heuristic as its fallback.
type Router struct {
	registry  *Registry
	llmClient gollem.LLMClient
	config    RouterConfig
}

// NewRouter creates a Router. llmClient may be nil; ambiguous cases then
// use the heuristic selector directly.
func NewRouter(registry *Registry, llmClient gollem.LLMClient, config RouterConfig) *Router {
	if config.HardConfidenceFloor <= 0 {
		config.HardConfidenceFloor = DefaultRouterConfig().HardConfidenceFloor
	}
	if config.SimpleRouteConfidence <= 0 {
		config.SimpleRouteConfidence = DefaultRouterConfig().SimpleRouteConfidence
	}
	if config.SelectionCap <= 0 {
		config.SelectionCap = DefaultRouterConfig().SelectionCap
	}
	if config.FallbackFloor <= 0 {
		config.FallbackFloor = DefaultRouterConfig().FallbackFloor
	}
	return &Router{
		registry:  registry,
		llmClient: llmClient,
		config:    config,
	}
}

// Route plans the tool calls for one classified intent
func (r *Router) Route(ctx context.Context, actor *model.Actor, intent *model.ClassifiedIntent) *model.RoutingDecision {
	if reason, mandatory := r.mandatoryEscalation(intent); mandatory {
		return &model.RoutingDecision{
			SelectedTools:      nil,
			Reasoning:          reason,
			RequiresEscalation: true,
			EscalationReason:   reason,
		}
	}

	candidates := r.permittedCandidates(actor, intent.Category)

	if len(candidates) == 0 {
		return &model.RoutingDecision{
			Reasoning:          "no tool handles this intent for this caller",
			RequiresEscalation: true,
			EscalationReason:   "no matching capability",
		}
	}

	escalate := intent.ShouldEscalate
	escalationReason := ""
	if escalate {
		escalationReason = "classifier flagged this message for escalation"
	}

	// Simple routing: one candidate, or a confident classification with a
	// clear primary match
	if len(candidates) == 1 || intent.Confidence >= r.config.SimpleRouteConfidence {
		return &model.RoutingDecision{
			SelectedTools: []model.SelectedTool{
				{Name: candidates[0].Definition().Name, Priority: 0},
			},
			Reasoning:          "direct category match",
			RequiresEscalation: escalate,
			EscalationReason:   escalationReason,
		}
	}

	decision, err := r.modelAssistedSelection(ctx, actor, intent, candidates)
	if err != nil {
		logging.From(ctx).Warn("model-assisted tool selection failed, using heuristic", "error", err)
		return r.heuristicSelection(intent, candidates)
	}
	if escalate {
		decision.RequiresEscalation = true
		if decision.EscalationReason == "" {
			decision.EscalationReason = escalationReason
		}
	}
	return decision
}

// mandatoryEscalation checks the triggers that bypass tool selection
// entirely
func (r *Router) mandatoryEscalation(intent *model.ClassifiedIntent) (string, bool) {
	if intent.Category == types.IntentEmergency {
		return "emergency category always goes to a human", true
	}
	if intent.Urgency.AtLeast(types.UrgencyHigh) && intent.ShouldEscalate {
		return "urgent message with a safety flag", true
	}
	if intent.Confidence < r.config.HardConfidenceFloor {
		return fmt.Sprintf("classification confidence %.2f below hard floor", intent.Confidence), true
	}
	return "", false
}

// permittedCandidates returns the tools mapped to the category that the
// actor may invoke, excluding the escalation tool itself
func (r *Router) permittedCandidates(actor *model.Actor, category types.IntentCategory) []Tool {
	var candidates []Tool
	for _, t := range r.registry.FindByIntent(category) {
		def := t.Definition()
		if def.Name == EscalationToolName {
			continue
		}
		if def.PermittedFor(actor) {
			candidates = append(candidates, t)
		}
	}
	return candidates
}

// heuristicSelection is the deterministic fallback: take candidates in
// registration order up to the cap, forcing escalation on low confidence
func (r *Router) heuristicSelection(intent *model.ClassifiedIntent, candidates []Tool) *model.RoutingDecision {
	decision := &model.RoutingDecision{
		Reasoning: "heuristic category match",
	}
	for i, t := range candidates {
		if i >= r.config.SelectionCap {
			break
		}
		decision.SelectedTools = append(decision.SelectedTools, model.SelectedTool{
			Name:     t.Definition().Name,
			Priority: i,
		})
	}

	if intent.Confidence < r.config.FallbackFloor || len(decision.SelectedTools) == 0 {
		decision.RequiresEscalation = true
		decision.EscalationReason = "low confidence routing fallback"
	}
	if intent.ShouldEscalate {
		decision.RequiresEscalation = true
		if decision.EscalationReason == "" {
			decision.EscalationReason = "classifier flagged this message for escalation"
		}
	}
	return decision
}

type selectionResponse struct {
	Tools []struct {
		Name     string `json:"name"`
		Priority int    `json:"priority"`
	} `json:"tools"`
	Escalate bool   `json:"escalate"`
	Reason   string `json:"reason"`
}

func selectionSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ToolSelection",
		Description: "Ordered tool invocation plan for a classified intent",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"tools": {
				Type:        gollem.TypeArray,
				Description: "Tools to invoke, at most three, lowest priority number first",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"name":     {Type: gollem.TypeString, Description: "Tool name from the provided list", Required: true},
						"priority": {Type: gollem.TypeInteger, Description: "Execution order, 0 first", Required: true},
					},
				},
			},
			"escalate": {
				Type:        gollem.TypeBoolean,
				Description: "Whether a human should also review this message",
				Required:    true,
			},
			"reason": {
				Type:        gollem.TypeString,
				Description: "One sentence explaining the selection",
				Required:    true,
			},
		},
	}
}

const selectionSystemPrompt = `You select which capabilities a school district assistant should invoke to answer a message.
Choose only from the provided tools. Prefer the fewest tools that can fully answer. Set escalate when a human should also review the message.`

func (r *Router) modelAssistedSelection(ctx context.Context, actor *model.Actor, intent *model.ClassifiedIntent, candidates []Tool) (*model.RoutingDecision, error) {
	if r.llmClient == nil {
		return nil, fmt.Errorf("no selection model configured")
	}

	session, err := r.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(selectionSchema()),
		gollem.WithSessionSystemPrompt(selectionSystemPrompt),
	)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User role: %s\nIntent: %s (confidence %.2f, urgency %s)\nMessage: %s\n\nAvailable tools:\n",
		actor.Role, intent.Category, intent.Confidence, intent.Urgency, intent.OriginalQuery)
	for _, t := range candidates {
		def := t.Definition()
		fmt.Fprintf(&sb, "- %s: %s\n", def.Name, def.Description)
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(sb.String()))
	if err != nil {
		return nil, err
	}
	if len(resp.Texts) == 0 {
		return nil, fmt.Errorf("tool selection returned empty response")
	}

	var parsed selectionResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(candidates))
	for _, t := range candidates {
		allowed[t.Definition().Name] = struct{}{}
	}

	decision := &model.RoutingDecision{
		Reasoning:          parsed.Reason,
		RequiresEscalation: parsed.Escalate,
	}
	if parsed.Escalate {
		decision.EscalationReason = parsed.Reason
	}
	for _, t := range parsed.Tools {
		if _, ok := allowed[t.Name]; !ok {
			continue
		}
		decision.SelectedTools = append(decision.SelectedTools, model.SelectedTool{
			Name:     t.Name,
			Priority: t.Priority,
		})
	}
	sort.SliceStable(decision.SelectedTools, func(i, j int) bool {
		return decision.SelectedTools[i].Priority < decision.SelectedTools[j].Priority
	})
	if len(decision.SelectedTools) > r.config.SelectionCap {
		decision.SelectedTools = decision.SelectedTools[:r.config.SelectionCap]
	}

	if len(decision.SelectedTools) == 0 {
		decision.RequiresEscalation = true
		if decision.EscalationReason == "" {
			decision.EscalationReason = "selector chose no usable tool"
		}
	}
	return decision, nil
}
