package retrieval

import (
	"sort"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

// FuseRRF merges a vector result list and a keyword result list with
// reciprocal rank fusion. Each chunk scores
//
//	weight*1/(k+vectorRank) + (1-weight)*1/(k+keywordRank)
//
// where a missing rank contributes nothing. Ranks are 1-based list
// positions. Ties break on ChunkID so output order is deterministic.
func FuseRRF(vector []*model.VectorResult, keyword []*model.KeywordResult, k int, weight float64) []*model.HybridResult {
	merged := make(map[model.ChunkID]*model.HybridResult, len(vector)+len(keyword))

	for i, v := range vector {
		rank := i + 1
		score := v.Similarity
		merged[v.ChunkID] = &model.HybridResult{
			ChunkID:       v.ChunkID,
			DocumentID:    v.DocumentID,
			Content:       v.Content,
			VectorScore:   &score,
			CombinedScore: weight / float64(k+rank),
		}
	}

	for i, kw := range keyword {
		rank := i + 1
		contribution := (1 - weight) / float64(k+rank)
		score := kw.Score

		if hit, ok := merged[kw.ChunkID]; ok {
			hit.KeywordScore = &score
			hit.Highlights = kw.Highlights
			hit.CombinedScore += contribution
			continue
		}
		merged[kw.ChunkID] = &model.HybridResult{
			ChunkID:       kw.ChunkID,
			DocumentID:    kw.DocumentID,
			Content:       kw.Content,
			Highlights:    kw.Highlights,
			KeywordScore:  &score,
			CombinedScore: contribution,
		}
	}

	fused := make([]*model.HybridResult, 0, len(merged))
	for _, hit := range merged {
		fused = append(fused, hit)
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].CombinedScore != fused[j].CombinedScore {
			return fused[i].CombinedScore > fused[j].CombinedScore
		}
		return fused[i].ChunkID < fused[j].ChunkID
	})
	return fused
}
