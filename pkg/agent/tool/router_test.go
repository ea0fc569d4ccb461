package tool_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

// ----- stub tool -----

type stubTool struct {
	def   model.ToolDefinition
	runFn func(ctx context.Context, req *tool.Request) (*model.ToolResult, error)
}

func (t *stubTool) Definition() model.ToolDefinition { return t.def }

func (t *stubTool) Run(ctx context.Context, req *tool.Request) (*model.ToolResult, error) {
	if t.runFn != nil {
		return t.runFn(ctx, req)
	}
	return &model.ToolResult{Success: true, Content: "ok"}, nil
}

func newStub(name string, intents ...types.IntentCategory) *stubTool {
	return &stubTool{
		def: model.ToolDefinition{
			Name:           name,
			Description:    "stub " + name,
			HandledIntents: intents,
			Timeout:        time.Second,
		},
	}
}

// ----- mock LLM client -----

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

// -----

func routerActor() *model.Actor {
	return &model.Actor{
		ID:         "actor-1",
		DistrictID: "district-1",
		Role:       types.RoleParent,
		Permissions: []types.Permission{
			types.PermissionDocumentsRead,
		},
	}
}

func confidentIntent(category types.IntentCategory, confidence float64) *model.ClassifiedIntent {
	return &model.ClassifiedIntent{
		Category:      category,
		Confidence:    confidence,
		Urgency:       types.UrgencyLow,
		OriginalQuery: "test question",
	}
}

func TestRegistry(t *testing.T) {
	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := tool.NewRegistry([]tool.Tool{
			newStub("a", types.IntentGeneral),
			newStub("a", types.IntentPolicy),
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("finds tools by intent in registration order", func(t *testing.T) {
		r := gt.R1(tool.NewRegistry([]tool.Tool{
			newStub("first", types.IntentPolicy, types.IntentGeneral),
			newStub("second", types.IntentPolicy),
			newStub("other", types.IntentSchedule),
		})).NoError(t)

		matched := r.FindByIntent(types.IntentPolicy)
		gt.Array(t, matched).Length(2)
		gt.Value(t, matched[0].Definition().Name).Equal("first")
		gt.Value(t, matched[1].Definition().Name).Equal("second")
	})
}

func TestRoute(t *testing.T) {
	ctx := context.Background()

	newRouter := func(llm gollem.LLMClient, tools ...tool.Tool) *tool.Router {
		r := gt.R1(tool.NewRegistry(tools)).NoError(t)
		return tool.NewRouter(r, llm, tool.DefaultRouterConfig())
	}

	t.Run("emergency short-circuits to escalation only", func(t *testing.T) {
		router := newRouter(nil, newStub("document_search", types.IntentEmergency))
		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentEmergency, 0.99))
		gt.Value(t, decision.RequiresEscalation).Equal(true)
		gt.Array(t, decision.SelectedTools).Length(0)
	})

	t.Run("confidence below the hard floor short-circuits", func(t *testing.T) {
		router := newRouter(nil, newStub("document_search", types.IntentGeneral))
		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentGeneral, 0.2))
		gt.Value(t, decision.RequiresEscalation).Equal(true)
		gt.Array(t, decision.SelectedTools).Length(0)
	})

	t.Run("single candidate routes directly", func(t *testing.T) {
		router := newRouter(nil,
			newStub("document_search", types.IntentPolicy),
			newStub("school_info", types.IntentGeneral),
		)
		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentPolicy, 0.7))
		gt.Value(t, decision.RequiresEscalation).Equal(false)
		gt.Array(t, decision.SelectedTools).Length(1)
		gt.Value(t, decision.SelectedTools[0].Name).Equal("document_search")
	})

	t.Run("permission filtering removes unauthorized tools", func(t *testing.T) {
		restricted := newStub("student_records", types.IntentPolicy)
		restricted.def.RequiredPermissions = []types.Permission{types.PermissionStudentsRead}

		router := newRouter(nil, restricted, newStub("document_search", types.IntentPolicy))
		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentPolicy, 0.9))
		gt.Array(t, decision.SelectedTools).Length(1)
		gt.Value(t, decision.SelectedTools[0].Name).Equal("document_search")
	})

	t.Run("no candidates escalates", func(t *testing.T) {
		router := newRouter(nil, newStub("school_info", types.IntentGeneral))
		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentPolicy, 0.9))
		gt.Value(t, decision.RequiresEscalation).Equal(true)
	})

	t.Run("model-assisted selection orders and caps tools", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						body, _ := json.Marshal(map[string]any{
							"tools": []map[string]any{
								{"name": "b", "priority": 1},
								{"name": "a", "priority": 0},
								{"name": "not-registered", "priority": 2},
							},
							"escalate": false,
							"reason":   "a covers the policy, b covers the schedule",
						})
						return &gollem.Response{Texts: []string{string(body)}}, nil
					},
				}, nil
			},
		}
		router := newRouter(llm,
			newStub("a", types.IntentPolicy),
			newStub("b", types.IntentPolicy),
			newStub("c", types.IntentPolicy),
		)

		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentPolicy, 0.7))
		gt.Array(t, decision.SelectedTools).Length(2)
		gt.Value(t, decision.SelectedTools[0].Name).Equal("a")
		gt.Value(t, decision.SelectedTools[1].Name).Equal("b")
		gt.Value(t, decision.RequiresEscalation).Equal(false)
	})

	t.Run("selector failure falls back to the category heuristic", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, goerr.New("selector unavailable")
			},
		}
		router := newRouter(llm,
			newStub("a", types.IntentPolicy),
			newStub("b", types.IntentPolicy),
		)

		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentPolicy, 0.7))
		gt.Array(t, decision.SelectedTools).Length(2)
		gt.Value(t, decision.RequiresEscalation).Equal(false)
	})

	t.Run("heuristic fallback escalates on low confidence", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, goerr.New("selector unavailable")
			},
		}
		router := newRouter(llm,
			newStub("a", types.IntentPolicy),
			newStub("b", types.IntentPolicy),
		)

		decision := router.Route(ctx, routerActor(), confidentIntent(types.IntentPolicy, 0.45))
		gt.Value(t, decision.RequiresEscalation).Equal(true)
	})
}
