package types

// IngestPhase represents the observable phase of a document ingestion task
type IngestPhase string

const (
	IngestQueued    IngestPhase = "queued"
	IngestChunking  IngestPhase = "chunking"
	IngestEmbedding IngestPhase = "embedding"
	IngestIndexing  IngestPhase = "indexing"
	IngestCompleted IngestPhase = "completed"
	IngestFailed    IngestPhase = "failed"
)

// Terminal reports whether the phase is a final state
func (p IngestPhase) Terminal() bool {
	return p == IngestCompleted || p == IngestFailed
}

// String returns the string representation of the ingest phase
func (p IngestPhase) String() string {
	return string(p)
}
