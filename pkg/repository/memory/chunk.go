package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/service/embedding"
	"github.com/edmon-lab/mentor/pkg/utils/keyword"
)

type storedChunk struct {
	chunk model.EmbeddedChunk
	terms []string
}

type chunkRepository struct {
	mu sync.RWMutex
	// districtID -> stored chunks
	chunks map[string][]*storedChunk
}

func newChunkRepository() *chunkRepository {
	return &chunkRepository{
		chunks: make(map[string][]*storedChunk),
	}
}

func copyEmbeddedChunk(c *model.EmbeddedChunk) model.EmbeddedChunk {
	copied := *c
	if c.Embedding != nil {
		copied.Embedding = make([]float32, len(c.Embedding))
		copy(copied.Embedding, c.Embedding)
	}
	return copied
}

func matchesFilter(c *model.EmbeddedChunk, filter model.SearchFilter) bool {
	if len(filter.DocumentIDs) > 0 {
		found := false
		for _, id := range filter.DocumentIDs {
			if c.DocumentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SectionHeader != "" && c.Metadata.SectionHeader != filter.SectionHeader {
		return false
	}
	if len(filter.ChunkTypes) > 0 {
		found := false
		for _, t := range filter.ChunkTypes {
			if c.Metadata.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *chunkRepository) ReplaceDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID, chunks []*model.EmbeddedChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]*storedChunk, 0, len(r.chunks[districtID])+len(chunks))
	for _, sc := range r.chunks[districtID] {
		if sc.chunk.DocumentID != docID {
			kept = append(kept, sc)
		}
	}
	for _, c := range chunks {
		kept = append(kept, &storedChunk{
			chunk: copyEmbeddedChunk(c),
			terms: keyword.Terms(c.Content),
		})
	}
	r.chunks[districtID] = kept
	return nil
}

func (r *chunkRepository) SearchByVector(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.VectorResult, 0)
	for _, sc := range r.chunks[districtID] {
		if !matchesFilter(&sc.chunk, filter) {
			continue
		}
		results = append(results, &model.VectorResult{
			ChunkID:    sc.chunk.ID,
			DocumentID: sc.chunk.DocumentID,
			Content:    sc.chunk.Content,
			Similarity: embedding.CosineSimilarity(vector, sc.chunk.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *chunkRepository) SearchByKeyword(ctx context.Context, districtID string, query string, limit int, filter model.SearchFilter) ([]*model.KeywordResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queryTerms := keyword.Terms(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	results := make([]*model.KeywordResult, 0)
	for _, sc := range r.chunks[districtID] {
		if !matchesFilter(&sc.chunk, filter) {
			continue
		}
		matched, score := keyword.Overlap(queryTerms, sc.terms)
		if score == 0 {
			continue
		}
		results = append(results, &model.KeywordResult{
			ChunkID:    sc.chunk.ID,
			DocumentID: sc.chunk.DocumentID,
			Content:    sc.chunk.Content,
			Score:      score,
			Highlights: matched,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *chunkRepository) CountByDocument(ctx context.Context, districtID string, docID model.DocumentID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, sc := range r.chunks[districtID] {
		if sc.chunk.DocumentID == docID {
			count++
		}
	}
	return count, nil
}

func (r *chunkRepository) DeleteDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]*storedChunk, 0, len(r.chunks[districtID]))
	for _, sc := range r.chunks[districtID] {
		if sc.chunk.DocumentID != docID {
			kept = append(kept, sc)
		}
	}
	r.chunks[districtID] = kept
	return nil
}
