package intent_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/service/intent"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"{}"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) { return nil, nil }

func (s *mockLLMSession) AppendHistory(*gollem.History) error { return nil }

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func classifierReturning(t *testing.T, body map[string]any) *intent.Classifier {
	t.Helper()
	raw, err := json.Marshal(body)
	gt.NoError(t, err)
	return intent.New(&mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{string(raw)}}, nil
				},
			}, nil
		},
	})
}

func testActor() *model.Actor {
	return &model.Actor{
		ID:         "actor-1",
		Name:       "Jordan Lee",
		DistrictID: "district-1",
		Role:       types.RoleParent,
	}
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("maps a clean classification", func(t *testing.T) {
		c := classifierReturning(t, map[string]any{
			"category":                 "ATTENDANCE",
			"confidence":               0.92,
			"urgency":                  "low",
			"entities":                 map[string]string{"date": "2026-09-01"},
			"requires_tools":           true,
			"requires_student_context": true,
			"should_escalate":          false,
			"reasoning":                "asks about an absence",
		})

		got := c.Classify(ctx, testActor(), "Was my daughter marked absent yesterday?", nil)
		gt.Value(t, got.Category).Equal(types.IntentAttendance)
		gt.Number(t, got.Confidence).Equal(0.92)
		gt.Value(t, got.Urgency).Equal(types.UrgencyLow)
		gt.Value(t, got.RequiresTools).Equal(true)
		gt.Value(t, got.RequiresStudentContext).Equal(true)
		gt.Value(t, got.ShouldEscalate).Equal(false)
		gt.Value(t, got.Entities["date"]).Equal("2026-09-01")
	})

	t.Run("invalid category normalizes to unknown", func(t *testing.T) {
		c := classifierReturning(t, map[string]any{
			"category":   "CAFETERIA",
			"confidence": 0.9,
			"urgency":    "low",
		})
		got := c.Classify(ctx, testActor(), "What is for lunch?", nil)
		gt.Value(t, got.Category).Equal(types.IntentUnknown)
	})

	t.Run("out of range confidence is clamped", func(t *testing.T) {
		c := classifierReturning(t, map[string]any{
			"category":   "GENERAL",
			"confidence": 1.7,
			"urgency":    "low",
		})
		got := c.Classify(ctx, testActor(), "Hello", nil)
		gt.Number(t, got.Confidence).Equal(1.0)
	})

	t.Run("classification failure yields the safe default", func(t *testing.T) {
		c := intent.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, goerr.New("model unavailable")
			},
		})
		got := c.Classify(ctx, testActor(), "Anything", nil)
		gt.Value(t, got.Category).Equal(types.IntentUnknown)
		gt.Value(t, got.ShouldEscalate).Equal(true)
		gt.Number(t, got.Confidence).Equal(0.0)
	})

	t.Run("malformed JSON yields the safe default", func(t *testing.T) {
		c := intent.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{"not json"}}, nil
					},
				}, nil
			},
		})
		got := c.Classify(ctx, testActor(), "Anything", nil)
		gt.Value(t, got.Category).Equal(types.IntentUnknown)
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("nil client yields the safe default", func(t *testing.T) {
		c := intent.New(nil)
		got := c.Classify(ctx, testActor(), "Anything", nil)
		gt.Value(t, got.Category).Equal(types.IntentUnknown)
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})
}

func TestEscalationRules(t *testing.T) {
	ctx := context.Background()

	classify := func(t *testing.T, category string, confidence float64, urgency, query string) *model.ClassifiedIntent {
		c := classifierReturning(t, map[string]any{
			"category":        category,
			"confidence":      confidence,
			"urgency":         urgency,
			"should_escalate": false,
		})
		return c.Classify(ctx, testActor(), query, nil)
	}

	t.Run("emergency always escalates", func(t *testing.T) {
		got := classify(t, "EMERGENCY", 0.99, "critical", "There is a gas leak in the gym")
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("low confidence escalates", func(t *testing.T) {
		got := classify(t, "GENERAL", 0.4, "low", "What time is the thing?")
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("high urgency complaint escalates", func(t *testing.T) {
		got := classify(t, "COMPLAINT", 0.95, "high", "My concern was ignored three times")
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("low urgency complaint does not force escalation", func(t *testing.T) {
		got := classify(t, "COMPLAINT", 0.95, "low", "The parking lot lines need repainting")
		gt.Value(t, got.ShouldEscalate).Equal(false)
	})

	t.Run("safety lexicon escalates regardless of category", func(t *testing.T) {
		got := classify(t, "GENERAL", 0.95, "low", "Someone is bullying my son at recess")
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("safety term in the model's reasoning escalates", func(t *testing.T) {
		c := classifierReturning(t, map[string]any{
			"category":        "GENERAL",
			"confidence":      0.95,
			"urgency":         "low",
			"should_escalate": false,
			"reasoning":       "Message hints at self-harm risk even though it reads as a general question",
		})
		got := c.Classify(ctx, testActor(), "Can you tell me about the counselor's office hours?", nil)
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("safety term in an extracted entity escalates", func(t *testing.T) {
		c := classifierReturning(t, map[string]any{
			"category":        "GENERAL",
			"confidence":      0.95,
			"urgency":         "low",
			"should_escalate": false,
			"entities":        map[string]string{"concern": "possible self-harm"},
		})
		got := c.Classify(ctx, testActor(), "I want to talk to someone about my son", nil)
		gt.Value(t, got.ShouldEscalate).Equal(true)
	})

	t.Run("confident benign message does not escalate", func(t *testing.T) {
		got := classify(t, "SCHEDULE", 0.95, "low", "When does the spring semester begin?")
		gt.Value(t, got.ShouldEscalate).Equal(false)
	})
}
