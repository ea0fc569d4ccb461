package interfaces

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

// ChunkRepository defines the tenant-scoped chunk store. Chunks belong to
// one document version; re-processing a document replaces its chunk set
// wholesale.
type ChunkRepository interface {
	// ReplaceDocumentChunks deletes all chunks of the document and stores
	// the given set in a single logical operation
	ReplaceDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID, chunks []*model.EmbeddedChunk) error

	// SearchByVector returns the chunks nearest to the query vector by
	// cosine similarity, most similar first
	SearchByVector(ctx context.Context, districtID string, vector []float32, limit int, filter model.SearchFilter) ([]*model.VectorResult, error)

	// SearchByKeyword returns chunks matching the query terms lexically,
	// best match first, with per-result highlights
	SearchByKeyword(ctx context.Context, districtID string, query string, limit int, filter model.SearchFilter) ([]*model.KeywordResult, error)

	// CountByDocument returns the number of stored chunks for a document
	CountByDocument(ctx context.Context, districtID string, docID model.DocumentID) (int, error)

	// DeleteDocumentChunks removes all chunks of a document
	DeleteDocumentChunks(ctx context.Context, districtID string, docID model.DocumentID) error
}
