package usecase

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// IngestResult summarizes one completed document ingestion
type IngestResult struct {
	DocumentID model.DocumentID
	Version    int
	Strategy   string
	ChunkCount int
	Archived   bool
}

// Ingest chunks, embeds and indexes one parsed document, replacing any
// chunks of earlier versions wholesale. Unlike Ask, ingestion fails loudly:
// a document that cannot be embedded must not silently disappear from the
// corpus.
func (uc *UseCases) Ingest(ctx context.Context, doc *model.ParsedDocument) (*IngestResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	logger := logging.From(ctx)
	status := uc.ingestStatus

	status.Set(doc.ID, doc.Version, types.IngestQueued)

	status.Set(doc.ID, doc.Version, types.IngestChunking)
	chunked, err := uc.chunker.Chunk(doc)
	if err != nil {
		status.Fail(doc.ID, err.Error())
		return nil, goerr.Wrap(err, "failed to chunk document",
			goerr.V("docID", doc.ID), goerr.V("version", doc.Version))
	}
	status.SetChunkCount(doc.ID, len(chunked.Chunks))
	logger.Info("document chunked",
		"docID", doc.ID, "strategy", chunked.Strategy, "chunks", len(chunked.Chunks))

	status.Set(doc.ID, doc.Version, types.IngestEmbedding)
	embedded, err := uc.embedder.EmbedChunks(ctx, chunked.Chunks)
	if err != nil {
		status.Fail(doc.ID, err.Error())
		return nil, goerr.Wrap(err, "failed to embed document chunks",
			goerr.V("docID", doc.ID), goerr.V("chunks", len(chunked.Chunks)))
	}

	status.Set(doc.ID, doc.Version, types.IngestIndexing)
	if err := uc.repo.Chunk().ReplaceDocumentChunks(ctx, doc.DistrictID, doc.ID, embedded); err != nil {
		status.Fail(doc.ID, err.Error())
		return nil, goerr.Wrap(err, "failed to index document chunks",
			goerr.V("docID", doc.ID))
	}

	archived := false
	if uc.archive != nil {
		if err := uc.archive.Store(ctx, doc); err != nil {
			// Archival is best effort; the index is already current
			logger.Warn("failed to archive document text", "error", err, "docID", doc.ID)
		} else {
			archived = true
		}
	}

	status.Set(doc.ID, doc.Version, types.IngestCompleted)
	logger.Info("document ingested",
		"docID", doc.ID, "version", doc.Version, "chunks", len(embedded))

	return &IngestResult{
		DocumentID: doc.ID,
		Version:    doc.Version,
		Strategy:   chunked.Strategy,
		ChunkCount: len(embedded),
		Archived:   archived,
	}, nil
}
