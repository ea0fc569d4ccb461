package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/service/retrieval"
)

const searchResultLimit = 5

// documentSearchTool answers questions from the district's document
// corpus via hybrid retrieval
type documentSearchTool struct {
	engine *retrieval.Engine
}

func (t *documentSearchTool) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        "document_search",
		Description: "Searches district documents (policies, handbooks, calendars, newsletters) and returns the most relevant passages with their sources",
		RequiredPermissions: []types.Permission{
			types.PermissionDocumentsRead,
		},
		HandledIntents: []types.IntentCategory{
			types.IntentAttendance,
			types.IntentAcademic,
			types.IntentEnrollment,
			types.IntentSchedule,
			types.IntentPolicy,
			types.IntentFacilities,
			types.IntentGeneral,
		},
		Timeout: 20 * time.Second,
	}
}

func (t *documentSearchTool) Run(ctx context.Context, req *tool.Request) (*model.ToolResult, error) {
	tool.Update(ctx, "Searching district documents...")

	resp, err := t.engine.Search(ctx, req.Actor.DistrictID, req.Intent.OriginalQuery, retrieval.Options{
		Limit:  searchResultLimit,
		Rerank: true,
	})
	if err != nil {
		return model.FailedToolResult("document_search", types.ErrKindProvider, err.Error()), nil
	}
	if len(resp.Results) == 0 {
		return model.FailedToolResult("document_search", types.ErrKindNotFound, "no relevant documents found"), nil
	}

	var sb strings.Builder
	citations := make([]model.Citation, 0, len(resp.Results))
	seen := make(map[string]struct{})

	for i, hit := range resp.Results {
		fmt.Fprintf(&sb, "Passage %d:\n%s\n\n", i+1, hit.Content)

		sourceID := string(hit.DocumentID)
		if _, ok := seen[sourceID]; ok {
			continue
		}
		seen[sourceID] = struct{}{}
		citations = append(citations, model.Citation{
			SourceID: sourceID,
			Excerpt:  excerpt(hit.Content),
		})
	}

	result := &model.ToolResult{
		ToolName:  "document_search",
		Success:   true,
		Content:   strings.TrimSpace(sb.String()),
		Citations: citations,
	}

	// Re-ranked scores are calibrated enough to report as confidence;
	// raw fusion scores are not
	if resp.Reranked && resp.Results[0].RerankScore != nil {
		result.Confidence = *resp.Results[0].RerankScore / 10
		result.HasConfidence = true
	}
	return result, nil
}

func excerpt(content string) string {
	const limit = 160
	if len(content) <= limit {
		return content
	}
	cut := content[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
