package intent

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
	historyTurns      = 3
	historyQueryLimit = 200
)

// Classifier assigns each user message an intent category, urgency and
// routing hints using a single LLM call. It never fails a request: any
// classification error degrades to the safe UNKNOWN intent, which always
// escalates.
type Classifier struct {
	llmClient gollem.LLMClient
}

// New creates a Classifier. llmClient may be nil; every message then
// classifies to the safe default.
func New(llmClient gollem.LLMClient) *Classifier {
	return &Classifier{llmClient: llmClient}
}

type classifierResponse struct {
	Category               string            `json:"category"`
	SecondaryCategory      string            `json:"secondary_category"`
	Confidence             float64           `json:"confidence"`
	Urgency                string            `json:"urgency"`
	Entities               map[string]string `json:"entities"`
	RequiresTools          bool              `json:"requires_tools"`
	RequiresStudentContext bool              `json:"requires_student_context"`
	ShouldEscalate         bool              `json:"should_escalate"`
	Reasoning              string            `json:"reasoning"`
}

// Classify classifies one user message. The most recent conversation
// turns are included as context; only the last few are used and each is
// truncated before prompting.
func (c *Classifier) Classify(ctx context.Context, actor *model.Actor, query string, history []*model.ConversationTurn) *model.ClassifiedIntent {
	if c.llmClient == nil {
		return model.UnknownIntent(query, "no classifier model configured")
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(classifierSchema()),
		gollem.WithSessionSystemPrompt(classifierSystemPrompt),
	)
	if err != nil {
		logging.From(ctx).Warn("failed to create classifier session, using safe default", "error", err)
		return model.UnknownIntent(query, "classifier session creation failed")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(c.buildPrompt(actor, query, history)))
	if err != nil {
		logging.From(ctx).Warn("intent classification failed, using safe default", "error", err)
		return model.UnknownIntent(query, "classification call failed")
	}
	if len(resp.Texts) == 0 {
		return model.UnknownIntent(query, "classifier returned empty response")
	}

	var parsed classifierResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		logging.From(ctx).Warn("failed to parse classifier response, using safe default",
			"error", err, "response", resp.Texts[0])
		return model.UnknownIntent(query, "classifier response was not valid JSON")
	}

	intent := c.validate(query, &parsed)
	applyEscalationRules(intent)
	return intent
}

// validate maps the raw model output into a ClassifiedIntent, normalizing
// out-of-range values rather than rejecting them
func (c *Classifier) validate(query string, parsed *classifierResponse) *model.ClassifiedIntent {
	category := types.IntentCategory(strings.ToUpper(parsed.Category)).Normalize()
	secondary := types.IntentUnknown
	if parsed.SecondaryCategory != "" {
		secondary = types.IntentCategory(strings.ToUpper(parsed.SecondaryCategory)).Normalize()
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	entities := parsed.Entities
	if entities == nil {
		entities = map[string]string{}
	}

	return &model.ClassifiedIntent{
		Category:               category,
		SecondaryCategory:      secondary,
		Confidence:             confidence,
		Urgency:                types.Urgency(strings.ToLower(parsed.Urgency)).Normalize(),
		Entities:               entities,
		RequiresTools:          parsed.RequiresTools,
		RequiresStudentContext: parsed.RequiresStudentContext,
		ShouldEscalate:         parsed.ShouldEscalate,
		Reasoning:              parsed.Reasoning,
		OriginalQuery:          query,
	}
}

const classifierSystemPrompt = `You classify messages sent to a school district's virtual assistant.
Users are students, parents, teachers, staff or administrators. Classify each message into exactly one primary category, estimate your confidence, judge urgency, and extract named entities such as student names, dates, school names or course names.
Set requires_tools when answering needs live data (attendance records, grades, schedules) rather than district documents alone.
Set requires_student_context when the answer depends on a specific student's records.
Set should_escalate when a human should handle the message. When in doubt about safety, escalate.`

func classifierSchema() *gollem.Parameter {
	categories := make([]string, 0)
	for _, c := range types.AllIntentCategories() {
		categories = append(categories, c.String())
	}
	urgencies := make([]string, 0)
	for _, u := range types.AllUrgencies() {
		urgencies = append(urgencies, u.String())
	}

	return &gollem.Parameter{
		Title:       "IntentClassification",
		Description: "Classification of one user message",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"category": {
				Type:        gollem.TypeString,
				Description: "Primary intent category",
				Required:    true,
				Enum:        categories,
			},
			"secondary_category": {
				Type:        gollem.TypeString,
				Description: "Secondary category when the message spans two topics, otherwise empty string",
				Required:    false,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "Confidence in the primary category from 0 to 1",
				Required:    true,
			},
			"urgency": {
				Type:        gollem.TypeString,
				Description: "How urgently the message needs handling",
				Required:    true,
				Enum:        urgencies,
			},
			"entities": {
				Type:        gollem.TypeObject,
				Description: "Named entities found in the message, as name to value pairs. Empty object when none.",
				Required:    false,
			},
			"requires_tools": {
				Type:        gollem.TypeBoolean,
				Description: "Whether answering needs live data lookups",
				Required:    true,
			},
			"requires_student_context": {
				Type:        gollem.TypeBoolean,
				Description: "Whether the answer depends on a specific student's records",
				Required:    true,
			},
			"should_escalate": {
				Type:        gollem.TypeBoolean,
				Description: "Whether a human should handle this message",
				Required:    true,
			},
			"reasoning": {
				Type:        gollem.TypeString,
				Description: "One or two sentences explaining the classification",
				Required:    true,
			},
		},
	}
}

func (c *Classifier) buildPrompt(actor *model.Actor, query string, history []*model.ConversationTurn) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User role: %s\n", actor.Role)
	fmt.Fprintf(&sb, "District: %s\n", actor.DistrictID)

	recent := history
	if len(recent) > historyTurns {
		recent = recent[:historyTurns]
	}
	if len(recent) > 0 {
		sb.WriteString("\nRecent conversation (newest first):\n")
		for _, turn := range recent {
			q := turn.Query
			if len(q) > historyQueryLimit {
				q = q[:historyQueryLimit] + "..."
			}
			fmt.Fprintf(&sb, "- [%s] %s\n", turn.Category, q)
		}
	}

	fmt.Fprintf(&sb, "\nMessage:\n%s", query)
	return sb.String()
}
