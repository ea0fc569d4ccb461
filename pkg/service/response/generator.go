package response

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/gollem"
)

const (
	historyTurns = 3
	parsePenalty = 0.8
)

// Generator synthesizes the final user-facing answer from tool outputs.
// It never fails a request: provider or parse failures degrade to
// deterministic fallbacks or salvaged raw text.
type Generator struct {
	llmClient gollem.LLMClient
}

// New creates a Generator. llmClient may be nil; every request then gets
// a deterministic fallback.
func New(llmClient gollem.LLMClient) *Generator {
	return &Generator{llmClient: llmClient}
}

// Input is everything one generation call needs
type Input struct {
	Actor     *model.Actor
	Intent    *model.ClassifiedIntent
	Execution *model.ExecutionResult
	History   []*model.ConversationTurn
}

type generatorResponse struct {
	MainResponse        string             `json:"main_response"`
	Citations           []citationResponse `json:"citations"`
	SuggestedFollowUps  []string           `json:"suggested_follow_ups"`
	ClarificationNeeded bool               `json:"clarification_needed"`
	ClarificationPrompt string             `json:"clarification_prompt"`
}

type citationResponse struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
}

// Generate produces the answer for one turn
func (g *Generator) Generate(ctx context.Context, in Input) *model.GeneratedResponse {
	if in.Execution.AllFailed() {
		return fallbackResponse(in.Intent, in.Execution)
	}
	if g.llmClient == nil {
		return fallbackResponse(in.Intent, in.Execution)
	}

	session, err := g.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(generatorSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt(in.Actor.Role)),
	)
	if err != nil {
		logging.From(ctx).Warn("failed to create generator session, using fallback", "error", err)
		return fallbackResponse(in.Intent, in.Execution)
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(g.buildPrompt(in)))
	if err != nil {
		logging.From(ctx).Warn("response generation failed, using fallback", "error", err)
		return fallbackResponse(in.Intent, in.Execution)
	}
	if len(resp.Texts) == 0 {
		return fallbackResponse(in.Intent, in.Execution)
	}

	raw := resp.Texts[0]
	var parsed generatorResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.MainResponse == "" {
		// Salvage the raw text rather than dropping the turn
		logging.From(ctx).Warn("generator reply was not valid JSON, salvaging raw text", "error", err)
		return &model.GeneratedResponse{
			Content:          raw,
			Confidence:       in.Execution.CombinedConfidence * parsePenalty,
			Citations:        toolCitations(in.Execution),
			RequiresFollowUp: in.Execution.RequiresFollowUp,
			ParseError:       true,
			EscalationRef:    in.Execution.EscalationRef,
		}
	}

	followUps := parsed.SuggestedFollowUps
	if parsed.ClarificationNeeded && parsed.ClarificationPrompt != "" {
		followUps = append([]string{parsed.ClarificationPrompt}, followUps...)
	}

	return &model.GeneratedResponse{
		Content:            parsed.MainResponse,
		Confidence:         in.Execution.CombinedConfidence,
		Citations:          mergeCitations(in.Execution, parsed.Citations),
		SuggestedFollowUps: followUps,
		RequiresFollowUp:   in.Execution.RequiresFollowUp || parsed.ClarificationNeeded,
		EscalationRef:      in.Execution.EscalationRef,
	}
}

// mergeCitations puts tool-provided citations first, keyed by source ID;
// model-suggested citations are appended only for unseen sources
func mergeCitations(execution *model.ExecutionResult, suggested []citationResponse) []model.Citation {
	merged := toolCitations(execution)
	seen := make(map[string]struct{}, len(merged))
	for _, c := range merged {
		seen[c.SourceID] = struct{}{}
	}

	for _, c := range suggested {
		if c.SourceID == "" {
			continue
		}
		if _, ok := seen[c.SourceID]; ok {
			continue
		}
		seen[c.SourceID] = struct{}{}
		merged = append(merged, model.Citation{
			SourceID: c.SourceID,
			Title:    c.Title,
			Excerpt:  c.Excerpt,
		})
	}
	return merged
}

func toolCitations(execution *model.ExecutionResult) []model.Citation {
	var citations []model.Citation
	seen := make(map[string]struct{})
	for _, r := range execution.Results {
		for _, c := range r.Citations {
			if _, ok := seen[c.SourceID]; ok {
				continue
			}
			seen[c.SourceID] = struct{}{}
			citations = append(citations, c)
		}
	}
	return citations
}

// systemPrompt tailors tone and disclosure guidance to the caller's role
func systemPrompt(role types.Role) string {
	base := `You are a school district's virtual assistant. Answer using ONLY the tool outputs provided. Never invent facts, dates, names or policies. If the tool outputs do not answer the question, say so plainly and suggest contacting the school.
Cite the source documents you used. Keep answers concise and warm.`

	switch role {
	case types.RoleStudent:
		return base + `
You are talking to a student. Use simple, encouraging language. Never share other students' information.`
	case types.RoleParent:
		return base + `
You are talking to a parent or guardian. Be clear about next steps and who to contact. Only discuss their own children.`
	case types.RoleTeacher, types.RoleStaff:
		return base + `
You are talking to district staff. Be direct and precise; reference policy names and document sections where available.`
	case types.RoleAdmin:
		return base + `
You are talking to a district administrator. Be complete and precise, and surface data caveats.`
	default:
		return base
	}
}

func generatorSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "GeneratedAnswer",
		Description: "Final synthesized answer for the user",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"main_response": {
				Type:        gollem.TypeString,
				Description: "The answer shown to the user",
				Required:    true,
			},
			"citations": {
				Type:        gollem.TypeArray,
				Description: "Source documents backing the answer",
				Required:    false,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"source_id": {Type: gollem.TypeString, Description: "Document ID", Required: true},
						"title":     {Type: gollem.TypeString, Description: "Document title", Required: false},
						"excerpt":   {Type: gollem.TypeString, Description: "Short supporting excerpt", Required: false},
					},
				},
			},
			"suggested_follow_ups": {
				Type:        gollem.TypeArray,
				Description: "Up to three natural follow-up questions the user might ask",
				Required:    false,
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"clarification_needed": {
				Type:        gollem.TypeBoolean,
				Description: "Whether the question was too ambiguous to answer fully",
				Required:    true,
			},
			"clarification_prompt": {
				Type:        gollem.TypeString,
				Description: "The clarifying question to ask, when clarification_needed is true",
				Required:    false,
			},
		},
	}
}

func (g *Generator) buildPrompt(in Input) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Question (%s, urgency %s): %s\n", in.Intent.Category, in.Intent.Urgency, in.Intent.OriginalQuery)

	recent := in.History
	if len(recent) > historyTurns {
		recent = recent[:historyTurns]
	}
	if len(recent) > 0 {
		sb.WriteString("\nRecent conversation (newest first):\n")
		for _, turn := range recent {
			fmt.Fprintf(&sb, "- %s\n", turn.Query)
		}
	}

	sb.WriteString("\nTool outputs:\n")
	for _, r := range in.Execution.Results {
		if r.Success {
			fmt.Fprintf(&sb, "--- %s (succeeded) ---\n%s\n", r.ToolName, r.Content)
			for _, c := range r.Citations {
				fmt.Fprintf(&sb, "[source %s: %s]\n", c.SourceID, c.Title)
			}
		} else {
			fmt.Fprintf(&sb, "--- %s (failed: %s) ---\n", r.ToolName, r.ErrorKind)
		}
	}

	return sb.String()
}
