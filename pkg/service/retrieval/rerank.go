package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

const rerankExcerptLimit = 500

type rerankResponse struct {
	Scores []rerankScore `json:"scores"`
}

type rerankScore struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

func rerankSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "RerankResponse",
		Description: "Relevance scores for retrieved document chunks",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"scores": {
				Type:        gollem.TypeArray,
				Description: "One entry per provided chunk",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"chunk_id": {
							Type:        gollem.TypeString,
							Description: "ID of the chunk being scored",
							Required:    true,
						},
						"score": {
							Type:        gollem.TypeNumber,
							Description: "Relevance of the chunk to the query from 0 (irrelevant) to 10 (directly answers it)",
							Required:    true,
						},
					},
				},
			},
		},
	}
}

const rerankSystemPrompt = `You score how relevant each document chunk is to a user's question about a school district.
Score every chunk from 0 to 10. 10 means the chunk directly answers the question, 0 means it is unrelated.
Judge relevance only. Do not reward writing quality or length.`

// rerank asks the LLM to score the top candidates in one batched call and
// blends each returned score with the fused score:
//
//	combined = (fused + rerank/10) / 2
//
// Only the scored prefix is re-sorted; the tail keeps its fused order.
func rerank(ctx context.Context, llmClient gollem.LLMClient, query string, fused []*model.HybridResult, topN int) ([]*model.HybridResult, error) {
	n := min(topN, len(fused))
	if n == 0 {
		return fused, nil
	}
	head := fused[:n]

	session, err := llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(rerankSchema()),
		gollem.WithSessionSystemPrompt(rerankSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rerank session")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nChunks:\n", query)
	for _, hit := range head {
		excerpt := hit.Content
		if len(excerpt) > rerankExcerptLimit {
			excerpt = excerpt[:rerankExcerptLimit]
		}
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", hit.ChunkID, excerpt)
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(sb.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "rerank generation failed")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("rerank returned empty response")
	}

	var parsed rerankResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse rerank response", goerr.V("response", resp.Texts[0]))
	}

	scores := make(map[model.ChunkID]float64, len(parsed.Scores))
	for _, s := range parsed.Scores {
		if s.Score < 0 {
			s.Score = 0
		}
		if s.Score > 10 {
			s.Score = 10
		}
		scores[model.ChunkID(s.ChunkID)] = s.Score
	}

	for _, hit := range head {
		score, ok := scores[hit.ChunkID]
		if !ok {
			continue
		}
		s := score
		hit.RerankScore = &s
		hit.CombinedScore = (hit.CombinedScore + score/10) / 2
	}

	sort.SliceStable(head, func(i, j int) bool {
		return head[i].CombinedScore > head[j].CombinedScore
	})
	return fused, nil
}
