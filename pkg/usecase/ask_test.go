package usecase_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/repository/memory"
	"github.com/edmon-lab/mentor/pkg/service/embedding"
	"github.com/edmon-lab/mentor/pkg/usecase"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

// ----- mock LLM client -----

// scriptedLLM answers each pipeline stage by recognizing its prompt shape
type scriptedLLM struct {
	classifier map[string]any
	selection  map[string]any
	rerank     map[string]any
	generator  map[string]any
}

type scriptedSession struct {
	llm *scriptedLLM
}

func (s *scriptedSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	var prompt string
	for _, in := range input {
		if t, ok := in.(gollem.Text); ok {
			prompt += string(t)
		}
	}

	var payload map[string]any
	switch {
	case strings.Contains(prompt, "\nMessage:\n"):
		payload = s.llm.classifier
	case strings.Contains(prompt, "Available tools:"):
		payload = s.llm.selection
	case strings.Contains(prompt, "Chunks:"):
		payload = s.llm.rerank
	case strings.Contains(prompt, "Tool outputs:"):
		payload = s.llm.generator
	}
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &gollem.Response{Texts: []string{string(body)}}, nil
}

func (s *scriptedSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *scriptedSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *scriptedSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *scriptedSession) History() (*gollem.History, error) { return nil, nil }

func (s *scriptedSession) AppendHistory(*gollem.History) error { return nil }

func (s *scriptedSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

func (c *scriptedLLM) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &scriptedSession{llm: c}, nil
}

func (c *scriptedLLM) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	vectors := make([][]float64, len(input))
	for i := range input {
		v := make([]float64, dimension)
		v[0] = 1
		vectors[i] = v
	}
	return vectors, nil
}

// -----

func parentActor() *model.Actor {
	return &model.Actor{
		ID:         "parent-1",
		Name:       "Jordan Lee",
		DistrictID: "district-1",
		Role:       types.RoleParent,
		Permissions: []types.Permission{
			types.PermissionDocumentsRead,
			types.PermissionStudentsRead,
			types.PermissionEscalate,
		},
		StudentIDs: []string{"student-1"},
	}
}

func calendarDocument() *model.ParsedDocument {
	return &model.ParsedDocument{
		ID:         "doc-calendar",
		DistrictID: "district-1",
		Version:    1,
		Title:      "District Calendar 2026-27",
		Content: "Winter break begins on December 22 and classes resume on January 6. " +
			"Spring break runs the last week of March. The final day of classes is June 12.",
		ParsedAt: time.Now().UTC(),
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("answers a grounded question with citations", func(t *testing.T) {
		llm := &scriptedLLM{
			classifier: map[string]any{
				"category":                 "SCHEDULE",
				"confidence":               0.9,
				"urgency":                  "low",
				"requires_tools":           false,
				"requires_student_context": false,
				"should_escalate":          false,
				"reasoning":                "calendar question",
			},
			rerank: map[string]any{"scores": []any{}},
			generator: map[string]any{
				"main_response":        "Winter break begins December 22; classes resume January 6.",
				"clarification_needed": false,
			},
		}

		repo := memory.New()
		uc := gt.R1(usecase.New(repo, usecase.WithLLMClient(llm))).NoError(t)

		ingested := gt.R1(uc.Ingest(ctx, calendarDocument())).NoError(t)
		gt.Number(t, ingested.ChunkCount).Greater(0)

		result := gt.R1(uc.Ask(ctx, parentActor(), "When is winter break?")).NoError(t)
		gt.Value(t, result.Response.Content).Equal("Winter break begins December 22; classes resume January 6.")
		gt.Value(t, result.Escalated).Equal(false)
		gt.Value(t, result.Intent.Category).Equal(types.IntentSchedule)

		found := false
		for _, c := range result.Response.Citations {
			if c.SourceID == "doc-calendar" {
				found = true
			}
		}
		gt.Value(t, found).Equal(true)
	})

	t.Run("persists the conversation turn", func(t *testing.T) {
		llm := &scriptedLLM{
			classifier: map[string]any{
				"category":                 "SCHEDULE",
				"confidence":               0.9,
				"urgency":                  "low",
				"requires_tools":           false,
				"requires_student_context": false,
				"should_escalate":          false,
				"reasoning":                "calendar question",
			},
			rerank: map[string]any{"scores": []any{}},
			generator: map[string]any{
				"main_response":        "Classes resume January 6.",
				"clarification_needed": false,
			},
		}

		repo := memory.New()
		uc := gt.R1(usecase.New(repo, usecase.WithLLMClient(llm))).NoError(t)
		gt.R1(uc.Ingest(ctx, calendarDocument())).NoError(t)
		gt.R1(uc.Ask(ctx, parentActor(), "When do classes resume?")).NoError(t)

		// Turn persistence is dispatched off the request path
		var turns []*model.ConversationTurn
		for i := 0; i < 100; i++ {
			var err error
			turns, err = repo.Conversation().RecentTurns(ctx, "district-1", "parent-1", 5)
			if err == nil && len(turns) > 0 {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		gt.Array(t, turns).Length(1)
		gt.Value(t, turns[0].Query).Equal("When do classes resume?")
		gt.Value(t, turns[0].Category).Equal(types.IntentSchedule)
	})

	t.Run("degrades to an escalation without a model", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		result := gt.R1(uc.Ask(ctx, parentActor(), "When is winter break?")).NoError(t)
		gt.Value(t, result.Escalated).Equal(true)
		gt.Value(t, strings.HasPrefix(result.Response.EscalationRef, "ESC-")).Equal(true)
		gt.Number(t, result.Response.Confidence).Equal(0.3)
		gt.Value(t, result.Response.Content).NotEqual("")
	})

	t.Run("refuses a message carrying an SSN", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		result := gt.R1(uc.Ask(ctx, parentActor(), "My SSN is 123-45-6789, can you update my file?")).NoError(t)
		gt.Value(t, result.Escalated).Equal(false)
		gt.Value(t, strings.Contains(result.Response.Content, "personal information")).Equal(true)
		gt.Number(t, result.Response.Confidence).Equal(0.0)
	})

	t.Run("escalates a harmful message with a reference ID", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		result := gt.R1(uc.Ask(ctx, parentActor(), "Someone said they are bringing a gun to school tomorrow")).NoError(t)
		gt.Value(t, result.Escalated).Equal(true)
		gt.Value(t, strings.Contains(result.Response.Content, "Reference ID:")).Equal(true)
		gt.Value(t, strings.HasPrefix(result.Response.EscalationRef, "ESC-")).Equal(true)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		_, err := uc.Ask(ctx, parentActor(), "")
		gt.Error(t, err).Is(usecase.ErrEmptyQuery)

		_, err = uc.Ask(ctx, nil, "hello")
		gt.Error(t, err).Is(usecase.ErrNilActor)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("tracks phases through completion", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		doc := calendarDocument()
		result := gt.R1(uc.Ingest(ctx, doc)).NoError(t)
		gt.Number(t, result.ChunkCount).Greater(0)
		gt.Value(t, result.Archived).Equal(false)

		status, ok := uc.IngestStatus(doc.ID)
		gt.Value(t, ok).Equal(true)
		gt.Value(t, status.Phase).Equal(types.IngestCompleted)
		gt.Number(t, status.ChunkCount).Equal(result.ChunkCount)
	})

	t.Run("replaces earlier versions wholesale", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		doc := calendarDocument()
		first := gt.R1(uc.Ingest(ctx, doc)).NoError(t)

		doc.Version = 2
		doc.Content = "Winter break begins on December 21."
		gt.R1(uc.Ingest(ctx, doc)).NoError(t)

		count := gt.R1(repo.Chunk().CountByDocument(ctx, "district-1", doc.ID)).NoError(t)
		gt.Number(t, count).LessOrEqual(first.ChunkCount)
		gt.Number(t, count).Greater(0)
	})

	t.Run("embedding exhaustion fails the job", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo,
			usecase.WithLLMClient(&failingEmbeddingLLM{}),
			usecase.WithEmbeddingConfig(embedding.Config{
				BatchSize:      10,
				MaxRetries:     1,
				RetryBaseDelay: time.Millisecond,
				BatchInterval:  time.Millisecond,
			}),
		)).NoError(t)

		doc := calendarDocument()
		_, err := uc.Ingest(ctx, doc)
		gt.Value(t, err).NotNil()

		status, ok := uc.IngestStatus(doc.ID)
		gt.Value(t, ok).Equal(true)
		gt.Value(t, status.Phase).Equal(types.IngestFailed)
	})

	t.Run("rejects a nil document", func(t *testing.T) {
		repo := memory.New()
		uc := gt.R1(usecase.New(repo)).NoError(t)

		_, err := uc.Ingest(ctx, nil)
		gt.Error(t, err).Is(usecase.ErrNilDocument)
	})
}

// failingEmbeddingLLM always fails embedding generation
type failingEmbeddingLLM struct {
	scriptedLLM
}

func (c *failingEmbeddingLLM) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, context.DeadlineExceeded
}
