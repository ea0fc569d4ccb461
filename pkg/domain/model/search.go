package model

import "github.com/edmon-lab/mentor/pkg/domain/types"

// SearchFilter narrows chunk search to a subset of the district's corpus
type SearchFilter struct {
	DocumentIDs   []DocumentID
	SectionHeader string
	ChunkTypes    []types.ChunkType
}

// VectorResult is one hit from vector-similarity search
type VectorResult struct {
	ChunkID    ChunkID
	DocumentID DocumentID
	Content    string
	Similarity float64
}

// KeywordResult is one hit from keyword (lexical) search
type KeywordResult struct {
	ChunkID    ChunkID
	DocumentID DocumentID
	Content    string
	Score      float64
	Highlights []string
}

// HybridResult is a fused search hit. VectorScore and KeywordScore are nil
// when the chunk was absent from the corresponding list; RerankScore is nil
// unless re-ranking touched this item. CombinedScore determines sort order.
type HybridResult struct {
	ChunkID       ChunkID
	DocumentID    DocumentID
	Content       string
	Highlights    []string
	VectorScore   *float64
	KeywordScore  *float64
	RerankScore   *float64
	CombinedScore float64
}

// SearchResponse is the paginated result of a hybrid search
type SearchResponse struct {
	Results    []*HybridResult
	TotalFused int // fused result count before pagination
	Offset     int
	Limit      int
	Reranked   bool
}
