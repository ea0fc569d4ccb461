package model

import (
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/google/uuid"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// ChunkID is a UUID-based identifier for a Chunk
type ChunkID string

// NewChunkID generates a new UUID v4 ChunkID
func NewChunkID() ChunkID {
	return ChunkID(uuid.New().String())
}

// DocumentID identifies a source document within a district
type DocumentID string

// ChunkMetadata carries positional and structural information about a chunk
type ChunkMetadata struct {
	Index         int             // position within the document's chunk sequence
	SectionHeader string          // header of the section the chunk came from, if any
	Type          types.ChunkType // how the chunk was produced
}

// Chunk represents a bounded span of a source document prepared for
// embedding and retrieval. TokenEstimate must not exceed the chunker's
// maximum size unless a single indivisible sentence or paragraph does.
type Chunk struct {
	ID            ChunkID
	DocumentID    DocumentID
	Content       string
	TokenEstimate int
	Metadata      ChunkMetadata
}

// EmbeddedChunk is a Chunk plus its fixed-dimension embedding vector
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

// ChunkingResult is the output of chunking one document
type ChunkingResult struct {
	DocumentID DocumentID
	Strategy   string // "structure" or "semantic"
	Chunks     []*Chunk
}

// PrimaryChunks returns the chunks that are not supplementary overlaps
func (r *ChunkingResult) PrimaryChunks() []*Chunk {
	primary := make([]*Chunk, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		if c.Metadata.Type != types.ChunkTypeOverlap {
			primary = append(primary, c)
		}
	}
	return primary
}

// OverlapChunks returns the supplementary overlap chunks
func (r *ChunkingResult) OverlapChunks() []*Chunk {
	overlaps := make([]*Chunk, 0)
	for _, c := range r.Chunks {
		if c.Metadata.Type == types.ChunkTypeOverlap {
			overlaps = append(overlaps, c)
		}
	}
	return overlaps
}

// EstimateTokens approximates the token count of text as ceil(len/4).
// This is a stand-in heuristic, not a tokenizer; chunk boundary policy is
// defined in terms of it.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
