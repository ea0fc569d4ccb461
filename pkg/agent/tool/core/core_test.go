package core_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/agent/tool/core"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/service/embedding"
	"github.com/edmon-lab/mentor/pkg/service/retrieval"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// ----- mock chunk repository -----

type mockChunkRepo struct {
	vectorFn func(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error)
}

func (m *mockChunkRepo) ReplaceDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID, chunks []*model.EmbeddedChunk) error {
	return nil
}

func (m *mockChunkRepo) SearchByVector(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error) {
	if m.vectorFn != nil {
		return m.vectorFn(ctx, districtID, vector, limit, filter)
	}
	return nil, nil
}

func (m *mockChunkRepo) SearchByKeyword(ctx context.Context, districtID string, query string, limit int, filter model.SearchFilter) ([]*model.KeywordResult, error) {
	return nil, nil
}

func (m *mockChunkRepo) CountByDocument(ctx context.Context, districtID string, docID model.DocumentID) (int, error) {
	return 0, nil
}

func (m *mockChunkRepo) DeleteDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID) error {
	return nil
}

// ----- mock student repository -----

type mockStudentRepo struct {
	getFn func(ctx context.Context, districtID string, studentID string) (*model.StudentRecord, error)
}

func (m *mockStudentRepo) Get(ctx context.Context, districtID string, studentID string) (*model.StudentRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, districtID, studentID)
	}
	return nil, nil
}

func (m *mockStudentRepo) Put(ctx context.Context, districtID string, record *model.StudentRecord) error {
	return nil
}

// -----

func findTool(t *testing.T, tools []tool.Tool, name string) tool.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Definition().Name == name {
			return tl
		}
	}
	t.Fatalf("tool %s not built", name)
	return nil
}

func buildTools(chunks *mockChunkRepo, students *mockStudentRepo, info *model.DistrictInfo) []tool.Tool {
	embedder := embedding.New(nil, embedding.DefaultConfig())
	engine := retrieval.New(chunks, embedder, nil, retrieval.DefaultConfig())
	return core.New(engine, students, nil, info)
}

func parentRequest(studentIDs ...string) *tool.Request {
	return &tool.Request{
		Actor: &model.Actor{
			ID:         "parent-1",
			DistrictID: "district-1",
			Role:       types.RoleParent,
			StudentIDs: studentIDs,
		},
		Intent: &model.ClassifiedIntent{
			Category:      types.IntentAttendance,
			Confidence:    0.9,
			Urgency:       types.UrgencyLow,
			Entities:      map[string]string{},
			OriginalQuery: "How many absences does my child have?",
		},
	}
}

func TestDocumentSearchTool(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages with deduplicated citations", func(t *testing.T) {
		chunks := &mockChunkRepo{
			vectorFn: func(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error) {
				return []*model.VectorResult{
					{ChunkID: "c1", DocumentID: "doc-handbook", Content: "Absences must be reported by 9 AM.", Similarity: 0.9},
					{ChunkID: "c2", DocumentID: "doc-handbook", Content: "Excused absences need a note.", Similarity: 0.8},
					{ChunkID: "c3", DocumentID: "doc-calendar", Content: "School resumes January 6.", Similarity: 0.7},
				}, nil
			},
		}
		tl := findTool(t, buildTools(chunks, &mockStudentRepo{}, nil), "document_search")

		result := gt.R1(tl.Run(ctx, parentRequest("student-1"))).NoError(t)
		gt.Value(t, result.Success).Equal(true)
		gt.Value(t, strings.Contains(result.Content, "Absences must be reported")).Equal(true)
		gt.Array(t, result.Citations).Length(2)
	})

	t.Run("no results degrade to a not-found failure", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, &mockStudentRepo{}, nil), "document_search")
		result := gt.R1(tl.Run(ctx, parentRequest("student-1"))).NoError(t)
		gt.Value(t, result.Success).Equal(false)
		gt.Value(t, result.ErrorKind).Equal(types.ErrKindNotFound)
	})

	t.Run("search failure degrades to a provider failure", func(t *testing.T) {
		chunks := &mockChunkRepo{
			vectorFn: func(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error) {
				return nil, goerr.New("store unavailable")
			},
		}
		tl := findTool(t, buildTools(chunks, &mockStudentRepo{}, nil), "document_search")
		result := gt.R1(tl.Run(ctx, parentRequest("student-1"))).NoError(t)
		gt.Value(t, result.Success).Equal(false)
		gt.Value(t, result.ErrorKind).Equal(types.ErrKindProvider)
	})
}

func TestStudentRecordsTool(t *testing.T) {
	ctx := context.Background()

	record := &model.StudentRecord{
		ID:             "student-1",
		DistrictID:     "district-1",
		Name:           "Ava Chen",
		GradeLevel:     "5",
		Homeroom:       "5B",
		AttendanceRate: 0.95,
		AbsencesYTD:    4,
		TardiesYTD:     1,
		Grades:         map[string]string{"Math": "A-", "Reading": "B+"},
		UpdatedAt:      time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	}

	students := &mockStudentRepo{
		getFn: func(ctx context.Context, districtID string, studentID string) (*model.StudentRecord, error) {
			if studentID == "student-1" {
				return record, nil
			}
			return nil, nil
		},
	}

	t.Run("linked parent reads the record", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, students, nil), "student_records")
		result := gt.R1(tl.Run(ctx, parentRequest("student-1"))).NoError(t)
		gt.Value(t, result.Success).Equal(true)
		gt.Value(t, strings.Contains(result.Content, "Ava Chen")).Equal(true)
		gt.Value(t, strings.Contains(result.Content, "95.0%")).Equal(true)
	})

	t.Run("unlinked student is a permission failure", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, students, nil), "student_records")
		req := parentRequest("student-1")
		req.Params = map[string]any{"student_id": "student-2"}

		result := gt.R1(tl.Run(ctx, req)).NoError(t)
		gt.Value(t, result.Success).Equal(false)
		gt.Value(t, result.ErrorKind).Equal(types.ErrKindPermission)
	})

	t.Run("ambiguous student is a validation failure", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, students, nil), "student_records")
		result := gt.R1(tl.Run(ctx, parentRequest("student-1", "student-3"))).NoError(t)
		gt.Value(t, result.Success).Equal(false)
		gt.Value(t, result.ErrorKind).Equal(types.ErrKindValidation)
	})

	t.Run("missing record is a not-found failure", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, students, nil), "student_records")
		req := parentRequest("student-9")

		result := gt.R1(tl.Run(ctx, req)).NoError(t)
		gt.Value(t, result.Success).Equal(false)
		gt.Value(t, result.ErrorKind).Equal(types.ErrKindNotFound)
	})
}

func TestSchoolInfoTool(t *testing.T) {
	ctx := context.Background()

	t.Run("serves the configured directory", func(t *testing.T) {
		info := &model.DistrictInfo{
			ID:          "district-1",
			Name:        "Edmonds Unified School District",
			Phone:       "555-0100",
			OfficeHours: "8 AM to 4 PM",
			Schools: []model.SchoolInfo{
				{Name: "Maplewood Elementary", Principal: "R. Okafor"},
			},
		}
		tl := findTool(t, buildTools(&mockChunkRepo{}, &mockStudentRepo{}, info), "school_info")

		result := gt.R1(tl.Run(ctx, parentRequest("student-1"))).NoError(t)
		gt.Value(t, result.Success).Equal(true)
		gt.Value(t, strings.Contains(result.Content, "Maplewood Elementary")).Equal(true)
		gt.Number(t, result.Confidence).Equal(1.0)
	})

	t.Run("missing directory is a not-found failure", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, &mockStudentRepo{}, nil), "school_info")
		result := gt.R1(tl.Run(ctx, parentRequest("student-1"))).NoError(t)
		gt.Value(t, result.Success).Equal(false)
	})
}

func TestEscalationTool(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a reference ID without a notifier", func(t *testing.T) {
		tl := findTool(t, buildTools(&mockChunkRepo{}, &mockStudentRepo{}, nil), "escalation")
		req := parentRequest("student-1")
		req.Params = map[string]any{"reason": "low confidence"}

		result := gt.R1(tl.Run(ctx, req)).NoError(t)
		gt.Value(t, result.Success).Equal(true)

		ref, ok := result.Metadata["reference_id"].(string)
		gt.Value(t, ok).Equal(true)
		gt.Value(t, strings.HasPrefix(ref, "ESC-")).Equal(true)
		gt.Number(t, len(ref)).Equal(len("ESC-") + 8)
		gt.Value(t, strings.Contains(result.Content, ref)).Equal(true)
		gt.Value(t, result.RequiresFollowUp).Equal(true)
	})
}
